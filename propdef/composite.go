package propdef

import "github.com/smnsjas/go-ewscore/xmlstream"

// Composite is a mutable value that reports its own changes to the property
// store holding it. A composite has at most one owner at a time: Attach
// replaces any previous notification func, and Attach(nil) detaches.
type Composite interface {
	Attach(changed func())
}

// Tracked implements Composite. Embed it and call Changed after every mutation.
type Tracked struct {
	changed func()
}

// Attach implements Composite.
func (t *Tracked) Attach(changed func()) { t.changed = changed }

// Changed notifies the current owner, if any.
func (t *Tracked) Changed() {
	if t.changed != nil {
		t.changed()
	}
}

// ComplexValue is a Composite with its own element content.
type ComplexValue interface {
	Composite
	// ReadXML reads the content of the property element under the cursor and
	// leaves the cursor on its end tag.
	ReadXML(r *xmlstream.Reader) error
	// WriteXML writes the content of the property element. The property
	// element itself is written by the caller.
	WriteXML(w *xmlstream.Writer) error
}

// ChangeLogger is implemented by composites that keep a change log of their
// own. ClearChangeLog is called when the owning store clears its log.
type ChangeLogger interface {
	ClearChangeLog()
}

// CustomUpdater is implemented by values that write their own update
// operations, such as indexed properties updated one entry at a time. Each
// method reports whether it wrote anything; returning false falls back to the
// default operation.
type CustomUpdater interface {
	WriteSetUpdate(w *xmlstream.Writer, s *Schema, def *Definition) (bool, error)
	WriteDeleteUpdate(w *xmlstream.Writer, s *Schema, def *Definition) (bool, error)
}
