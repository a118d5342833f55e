// Package propset defines which properties a request asks the server to return.
//
// A PropertySet combines a base shape with explicitly listed extra properties.
// The canonical sets IDOnly and FirstClass are shared and read-only; mutate a
// copy made with New or Clone instead.
package propset

import (
	"errors"
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// ErrReadOnly is returned when a canonical property set is modified.
var ErrReadOnly = errors.New("propset: property set is read-only")

// BaseShape is the base of a property set.
type BaseShape int

const (
	// BaseIDOnly returns only the identity property.
	BaseIDOnly BaseShape = iota
	// BaseFirstClass returns every first-class property of the schema.
	BaseFirstClass
)

// EnumName implements xmlstream.Enum.
func (b BaseShape) EnumName() string {
	if b == BaseFirstClass {
		return "FirstClassProperties"
	}
	return "IdOnly"
}

// WireToken implements xmlstream.WireEnum.
func (b BaseShape) WireToken() (string, bool) {
	if b == BaseFirstClass {
		return "AllProperties", true
	}
	return "IdOnly", true
}

func (b BaseShape) String() string { return b.EnumName() }

// ParseBaseShape accepts either the name or the wire token of a base shape.
func ParseBaseShape(s string) (BaseShape, bool) {
	for _, b := range []BaseShape{BaseIDOnly, BaseFirstClass} {
		tok, _ := b.WireToken()
		if s == b.EnumName() || s == tok {
			return b, true
		}
	}
	return 0, false
}

// PropertySet is a base shape plus ordered extra properties.
type PropertySet struct {
	base     BaseShape
	extra    []*propdef.Definition
	readOnly bool
}

var (
	// IDOnly requests only identities.
	IDOnly = &PropertySet{base: BaseIDOnly, readOnly: true}
	// FirstClass requests every first-class property.
	FirstClass = &PropertySet{base: BaseFirstClass, readOnly: true}
)

// New returns a mutable set with the given base and extras.
func New(base BaseShape, extra ...*propdef.Definition) *PropertySet {
	s := &PropertySet{base: base}
	for _, d := range extra {
		_ = s.Add(d)
	}
	return s
}

// Clone returns a mutable copy of s.
func (s *PropertySet) Clone() *PropertySet {
	return &PropertySet{base: s.base, extra: slices.Clone(s.extra)}
}

// Base returns the base shape.
func (s *PropertySet) Base() BaseShape { return s.base }

// Extra returns the explicitly added properties in insertion order.
func (s *PropertySet) Extra() []*propdef.Definition { return slices.Clone(s.extra) }

// IsReadOnly reports whether s is one of the canonical sets.
func (s *PropertySet) IsReadOnly() bool { return s.readOnly }

// SetBase changes the base shape.
func (s *PropertySet) SetBase(b BaseShape) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.base = b
	return nil
}

// Add appends def unless it is already present.
func (s *PropertySet) Add(def *propdef.Definition) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if !slices.Contains(s.extra, def) {
		s.extra = append(s.extra, def)
	}
	return nil
}

// Remove deletes def from the extras.
func (s *PropertySet) Remove(def *propdef.Definition) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.extra = slices.DeleteFunc(s.extra, func(d *propdef.Definition) bool { return d == def })
	return nil
}

// Clear removes every extra.
func (s *PropertySet) Clear() error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.extra = nil
	return nil
}

// Contains reports whether def was added explicitly.
func (s *PropertySet) Contains(def *propdef.Definition) bool {
	return slices.Contains(s.extra, def)
}

// WasRequested reports whether a response to a request with this set carries
// def: it is an extra, the schema identity, or first-class under a
// first-class base.
func (s *PropertySet) WasRequested(def *propdef.Definition, schema *propdef.Schema, summaryOnly bool) bool {
	if s.Contains(def) {
		return true
	}
	if schema == nil {
		return false
	}
	if def == schema.ID {
		return true
	}
	return s.base == BaseFirstClass && schema.IsFirstClass(def, summaryOnly)
}

// WriteShape writes the shape element, for example m:ItemShape.
func (s *PropertySet) WriteShape(w *xmlstream.Writer, element xmlstream.QName) error {
	w.WriteStartElement(element)
	if err := w.WriteElementValue(xmlstream.Types.Name("BaseShape"), s.base); err != nil {
		return err
	}
	if len(s.extra) > 0 {
		w.WriteStartElement(xmlstream.Types.Name("AdditionalProperties"))
		for _, d := range s.extra {
			if err := d.WriteFieldURI(w); err != nil {
				return err
			}
		}
		w.WriteEndElement()
	}
	w.WriteEndElement()
	return nil
}
