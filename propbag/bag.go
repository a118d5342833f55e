package propbag

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/propset"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// Owner is the entity a Bag belongs to. The bag only reads entity-level
// metadata through it and never controls the owner's lifecycle.
type Owner interface {
	Schema() *propdef.Schema
	RequestedVersion() propdef.Version
	// IsNew reports whether the entity has not been saved yet.
	IsNew() bool
	// IsAttachment reports whether the entity is owned by an attachment and
	// therefore immutable.
	IsAttachment() bool
}

// binding identifies one attachment of a composite value to a key. A
// notification carrying a binding that is no longer current is stale.
type binding struct {
	def *propdef.Definition
}

// Bag holds the property values of one entity and tracks their changes.
//
// A Bag is not safe for concurrent use.
type Bag struct {
	owner  Owner
	logger *slog.Logger

	values map[*propdef.Definition]any
	loaded map[*propdef.Definition]bool

	added    keyList
	modified keyList
	deleted  deletions

	requested   *propset.PropertySet
	summaryOnly bool

	dirty   bool
	loading bool

	bindings map[*propdef.Definition]*binding
}

// New returns an empty bag for owner.
func New(owner Owner) *Bag {
	return &Bag{
		owner:    owner,
		logger:   slog.New(slog.DiscardHandler),
		values:   make(map[*propdef.Definition]any),
		loaded:   make(map[*propdef.Definition]bool),
		bindings: make(map[*propdef.Definition]*binding),
	}
}

// SetLogger sets the logger for debug records. A nil logger disables logging.
func (b *Bag) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	b.logger = l
}

// Owner returns the entity the bag belongs to.
func (b *Bag) Owner() Owner { return b.owner }

// Schema returns the owner's schema.
func (b *Bag) Schema() *propdef.Schema { return b.owner.Schema() }

func (b *Bag) checkVersion(op string, def *propdef.Definition) error {
	if v := b.owner.RequestedVersion(); !def.SupportedIn(v) {
		return &PropertyError{
			Op:       op,
			Property: def.String(),
			Err:      fmt.Errorf("%w: requires %s, requested %s", ErrVersion, def.Version, v),
		}
	}
	return nil
}

// Get returns the value of def. A nil value with a nil error means the
// property is nullable and has no value.
func (b *Bag) Get(def *propdef.Definition) (any, error) {
	if err := b.checkVersion("get", def); err != nil {
		return nil, err
	}
	if v, ok := b.values[def]; ok {
		return v, nil
	}
	if def.Has(propdef.AutoInstantiateOnRead) {
		if inst, ok := def.Codec.(propdef.Instantiator); ok {
			v := inst.NewValue()
			b.assign(def, v)
			return v, nil
		}
	}
	if def == b.owner.Schema().ID {
		return nil, nil
	}
	if !b.IsLoaded(def) {
		return nil, &PropertyError{Op: "get", Property: def.String(), Err: ErrNotLoaded}
	}
	if !def.Nullable {
		err := ErrNotAssigned
		if b.IsRequested(def) {
			err = ErrNotReturned
		}
		return nil, &PropertyError{Op: "get", Property: def.String(), Err: err}
	}
	return nil, nil
}

// Lookup returns the value of def without version or state checks.
func (b *Bag) Lookup(def *propdef.Definition) (any, bool) {
	v, ok := b.values[def]
	return v, ok
}

// Contains reports whether def has a value.
func (b *Bag) Contains(def *propdef.Definition) bool {
	_, ok := b.values[def]
	return ok
}

// IsLoaded reports whether def was loaded from the wire or requested by the
// load that populated the bag.
func (b *Bag) IsLoaded(def *propdef.Definition) bool {
	return b.loading || b.loaded[def] || b.IsRequested(def)
}

// IsRequested reports whether the load that populated the bag asked for def.
func (b *Bag) IsRequested(def *propdef.Definition) bool {
	return b.requested != nil && b.requested.WasRequested(def, b.owner.Schema(), b.summaryOnly)
}

// Requested returns the property set of the last load, or nil.
func (b *Bag) Requested() *propset.PropertySet { return b.requested }

// Set assigns v to def. Assigning nil deletes the value.
func (b *Bag) Set(def *propdef.Definition, v any) error {
	if err := b.checkVersion("set", def); err != nil {
		return err
	}
	if !b.loading {
		if err := b.checkWritable(def, v); err != nil {
			return &PropertyError{Op: "set", Property: def.String(), Err: err}
		}
	}
	if v == nil {
		b.delete(def)
		return nil
	}
	b.assign(def, v)
	return nil
}

func (b *Bag) checkWritable(def *propdef.Definition, v any) error {
	if b.owner.IsNew() {
		if !def.Has(propdef.CanSet) {
			return ErrReadOnly
		}
		return nil
	}
	switch {
	case b.owner.IsAttachment():
		return ErrAttachmentReadOnly
	case v == nil && !def.Has(propdef.CanDelete):
		return ErrNotDeletable
	case !def.Has(propdef.CanUpdate):
		return ErrNotUpdatable
	}
	return nil
}

// assign runs the add or modify transition for a non-nil value.
func (b *Bag) assign(def *propdef.Definition, v any) {
	old, present := b.values[def]
	if present {
		b.detach(def, old)
	}
	switch {
	case b.deleted.remove(def):
		b.modified.add(def)
	case b.added.has(def):
	case present:
		b.modified.add(def)
	default:
		b.added.add(def)
	}
	b.values[def] = v
	if b.loading {
		b.loaded[def] = true
	}
	b.dirty = true
	b.attach(def, v)
}

// delete runs the delete transition. The prior value is kept in the deleted set.
func (b *Bag) delete(def *propdef.Definition) {
	if b.deleted.has(def) {
		return
	}
	prior, present := b.values[def]
	if present {
		b.detach(def, prior)
		delete(b.values, def)
	}
	b.added.remove(def)
	b.modified.remove(def)
	b.deleted = append(b.deleted, Deletion{Property: def, Prior: prior})
	b.dirty = true
}

// Restore stores a value received from the server outside of Load. No
// capability checks apply and the property is not recorded as changed. A
// nil value removes the property.
func (b *Bag) Restore(def *propdef.Definition, v any) {
	if old, ok := b.values[def]; ok {
		b.detach(def, old)
		delete(b.values, def)
	}
	b.added.remove(def)
	b.modified.remove(def)
	b.deleted.remove(def)
	b.loaded[def] = true
	if v == nil {
		return
	}
	b.values[def] = v
	b.attach(def, v)
}

func (b *Bag) attach(def *propdef.Definition, v any) {
	c, ok := v.(propdef.Composite)
	if !ok {
		return
	}
	tok := &binding{def: def}
	b.bindings[def] = tok
	c.Attach(func() { b.compositeChanged(tok) })
}

func (b *Bag) detach(def *propdef.Definition, v any) {
	delete(b.bindings, def)
	if c, ok := v.(propdef.Composite); ok {
		c.Attach(nil)
	}
}

// compositeChanged is the notification target of attached composites. It
// may run while the bag is itself attaching the value.
func (b *Bag) compositeChanged(tok *binding) {
	if b.bindings[tok.def] != tok {
		b.logger.Debug("ignoring change from detached composite", "property", tok.def.String())
		return
	}
	if b.loading {
		return
	}
	if !b.added.has(tok.def) && !b.deleted.has(tok.def) {
		b.modified.add(tok.def)
	}
	b.dirty = true
}

// Added returns the properties assigned for the first time, in order.
func (b *Bag) Added() []*propdef.Definition { return slices.Clone(b.added) }

// Modified returns the properties whose values changed, in order.
func (b *Bag) Modified() []*propdef.Definition { return slices.Clone(b.modified) }

// Deleted returns the deleted properties and their prior values, in order.
func (b *Bag) Deleted() []Deletion { return slices.Clone(b.deleted) }

// IsDirty reports whether the bag has changes to save.
func (b *Bag) IsDirty() bool { return b.dirty }

// MarkDirty records a structural change that is not captured by any
// property's change tracking.
func (b *Bag) MarkDirty() { b.dirty = true }

// ClearChangeLog empties the change sets and resets the dirty flag. Values
// are kept. Composite values with their own change log are cleared too.
func (b *Bag) ClearChangeLog() {
	b.added = nil
	b.modified = nil
	b.deleted = nil
	b.dirty = false
	for _, v := range b.values {
		if cl, ok := v.(propdef.ChangeLogger); ok {
			cl.ClearChangeLog()
		}
	}
}

// Clear discards all values and bookkeeping.
func (b *Bag) Clear() {
	for def, v := range b.values {
		b.detach(def, v)
	}
	clear(b.values)
	clear(b.loaded)
	clear(b.bindings)
	b.requested = nil
	b.summaryOnly = false
	b.ClearChangeLog()
}

// Value returns the value of def as a T. A nullable property without a
// value yields the zero T.
func Value[T any](b *Bag, def *propdef.Definition) (T, error) {
	var zero T
	v, err := b.Get(def)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &PropertyError{
			Op:       "get",
			Property: def.String(),
			Err:      fmt.Errorf("%w: holds %T, want %T", propdef.ErrValueType, v, zero),
		}
	}
	return t, nil
}

// LoadOptions control Load.
type LoadOptions struct {
	// Reset discards existing values before loading.
	Reset bool
	// Requested is the property set the request asked for.
	Requested *propset.PropertySet
	// SummaryOnly marks a summary (find) response.
	SummaryOnly bool
}

// Load populates the bag from the entity element under the cursor and leaves
// the cursor on its end tag. Unknown elements, and elements of properties
// newer than the requested version, are skipped. The change log is cleared
// when Load returns, also on error.
func (b *Bag) Load(r *xmlstream.Reader, opts LoadOptions) error {
	b.loading = true
	defer func() {
		b.loading = false
		b.ClearChangeLog()
	}()

	schema := b.owner.Schema()
	if err := r.EnsureStartElement(schema.Element.NS, schema.Element.Local); err != nil {
		return err
	}
	if opts.Reset {
		b.Clear()
	}
	b.requested = opts.Requested
	b.summaryOnly = opts.SummaryOnly

	version := b.owner.RequestedVersion()
	b.logger.Debug("loading entity", "schema", schema.Name, "version", version.String())
	count := 0
	err := r.ReadChildren(func() error {
		def, ok := schema.Lookup(r.Name())
		if !ok {
			b.logger.Debug("skipping unknown element", "schema", schema.Name, "element", r.LocalName(), "namespace", r.NamespaceURI())
			return r.Skip()
		}
		if !def.SupportedIn(version) {
			b.logger.Debug("skipping unsupported property", "property", def.String(), "requires", def.Version.String())
			return r.Skip()
		}
		v, err := def.Codec.ReadValue(r, def)
		if err != nil {
			return &PropertyError{Op: "load", Property: def.String(), Err: err}
		}
		count++
		if v == nil {
			b.delete(def)
			b.loaded[def] = true
			return nil
		}
		b.assign(def, v)
		return nil
	})
	if err != nil {
		b.logger.Debug("entity load failed", "schema", schema.Name, "error", err)
		return err
	}
	b.logger.Debug("loaded entity", "schema", schema.Name, "properties", count)
	return nil
}

// Write writes the entity element with every settable, version-supported
// property that has a value, in schema order.
func (b *Bag) Write(w *xmlstream.Writer) error {
	schema := b.owner.Schema()
	version := b.owner.RequestedVersion()
	w.WriteStartElement(schema.Element)
	for _, def := range schema.Properties() {
		if !def.Has(propdef.CanSet) || !def.SupportedIn(version) {
			continue
		}
		if _, ok := b.values[def]; !ok {
			continue
		}
		if err := b.WriteProperty(w, def); err != nil {
			return err
		}
	}
	w.WriteEndElement()
	return nil
}

// WriteProperty writes the element of def. Nothing is written when def has no value.
func (b *Bag) WriteProperty(w *xmlstream.Writer, def *propdef.Definition) error {
	v, ok := b.values[def]
	if !ok {
		return nil
	}
	if err := def.Codec.WriteValue(w, def, v); err != nil {
		return &PropertyError{Op: "write", Property: def.String(), Err: err}
	}
	return nil
}
