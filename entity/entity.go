// Package entity binds property bags to the entities that own them.
//
// An Entity is the owner a propbag.Bag consults for its schema, the requested
// protocol version and its new/attachment state. A Registry maps wire element
// names to entity factories so a response can be decoded without knowing the
// concrete entity type in advance.
package entity

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/update"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

var (
	// ErrUnsaved is returned when an update is written for an entity that was never saved.
	ErrUnsaved = errors.New("entity: entity has not been saved")
	// ErrSaved is returned when a create is written for an entity that already exists.
	ErrSaved = errors.New("entity: entity already exists")
	// ErrUnknownEntity is returned when no factory is registered for an element.
	ErrUnknownEntity = errors.New("entity: unknown entity element")
)

// Entity is a local handle on a server-side object.
type Entity struct {
	schema     *propdef.Schema
	version    propdef.Version
	isNew      bool
	attachment bool
	logger     *slog.Logger
	bag        *propbag.Bag
}

// Option configures an Entity.
type Option func(*Entity)

// WithLogger sets the logger of the entity and its property bag.
func WithLogger(l *slog.Logger) Option {
	return func(e *Entity) { e.logger = l }
}

// AsAttachment marks the entity as owned by an attachment. Such entities are read-only.
func AsAttachment() Option {
	return func(e *Entity) { e.attachment = true }
}

// New returns a new, unsaved entity of schema s.
func New(s *propdef.Schema, version propdef.Version, opts ...Option) *Entity {
	e := &Entity{schema: s, version: version, isNew: true}
	for _, opt := range opts {
		opt(e)
	}
	e.bag = propbag.New(e)
	e.bag.SetLogger(e.logger)
	return e
}

// Schema implements propbag.Owner.
func (e *Entity) Schema() *propdef.Schema { return e.schema }

// RequestedVersion implements propbag.Owner.
func (e *Entity) RequestedVersion() propdef.Version { return e.version }

// IsNew implements propbag.Owner.
func (e *Entity) IsNew() bool { return e.isNew }

// IsAttachment implements propbag.Owner.
func (e *Entity) IsAttachment() bool { return e.attachment }

// Bag returns the property bag of the entity.
func (e *Entity) Bag() *propbag.Bag { return e.bag }

// Get returns the value of def.
func (e *Entity) Get(def *propdef.Definition) (any, error) { return e.bag.Get(def) }

// Set assigns v to def; nil deletes the value.
func (e *Entity) Set(def *propdef.Definition, v any) error { return e.bag.Set(def, v) }

// ID returns the identity value, or nil when the entity has none yet.
func (e *Entity) ID() any {
	if e.schema.ID == nil {
		return nil
	}
	v, _ := e.bag.Lookup(e.schema.ID)
	return v
}

// IsDirty reports whether the entity has unsaved changes.
func (e *Entity) IsDirty() bool { return e.bag.IsDirty() }

// Load populates the entity from the element under the cursor. A loaded
// entity is no longer new.
func (e *Entity) Load(r *xmlstream.Reader, opts propbag.LoadOptions) error {
	if err := e.bag.Load(r, opts); err != nil {
		return fmt.Errorf("load %s: %w", e.schema.Name, err)
	}
	e.isNew = false
	return nil
}

// WriteCreate writes the full entity element for a create request.
func (e *Entity) WriteCreate(w *xmlstream.Writer) error {
	if !e.isNew {
		return ErrSaved
	}
	return e.bag.Write(w)
}

// WriteUpdate writes the change element for an update request.
func (e *Entity) WriteUpdate(w *xmlstream.Writer) error {
	if e.isNew {
		return ErrUnsaved
	}
	return update.WriteChange(w, e.bag)
}

// Saved records a successful create or update and clears the change log.
// id, when not nil, is the identity the server assigned.
func (e *Entity) Saved(id any) {
	if id != nil && e.schema.ID != nil {
		e.bag.Restore(e.schema.ID, id)
	}
	e.isNew = false
	e.bag.ClearChangeLog()
}
