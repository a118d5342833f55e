package entity

import (
	"encoding/xml"
	"fmt"
	"maps"
	"slices"

	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// Factory returns a new entity for the requested version.
type Factory func(version propdef.Version, opts ...Option) *Entity

// Registry maps entity element names to factories.
type Registry struct {
	factories map[xml.Name]Factory
}

// NewRegistry returns a registry with a factory for each schema.
func NewRegistry(schemas ...*propdef.Schema) *Registry {
	r := &Registry{factories: make(map[xml.Name]Factory)}
	for _, s := range schemas {
		r.Register(s)
	}
	return r
}

// Register adds a factory that creates plain entities of s.
func (r *Registry) Register(s *propdef.Schema) {
	r.RegisterFactory(s.Element, func(v propdef.Version, opts ...Option) *Entity {
		return New(s, v, opts...)
	})
}

// RegisterFactory adds or replaces the factory for element name.
func (r *Registry) RegisterFactory(name xmlstream.QName, f Factory) {
	r.factories[xml.Name{Space: name.NS.URI, Local: name.Local}] = f
}

// Lookup returns the factory for an element name read from the wire.
func (r *Registry) Lookup(name xml.Name) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the local names of all registered elements, sorted.
func (r *Registry) Names() []string {
	var names []string
	for n := range maps.Keys(r.factories) {
		names = append(names, n.Local)
	}
	slices.Sort(names)
	return names
}

// Load creates an entity for the element under the cursor and loads it.
func (r *Registry) Load(rd *xmlstream.Reader, version propdef.Version, lo propbag.LoadOptions, opts ...Option) (*Entity, error) {
	if rd.NodeType() != xmlstream.NodeStartElement {
		return nil, fmt.Errorf("%w: cursor on %s", ErrUnknownEntity, rd.NodeType())
	}
	f, ok := r.Lookup(rd.Name())
	if !ok {
		return nil, fmt.Errorf("%w: {%s}%s", ErrUnknownEntity, rd.NamespaceURI(), rd.LocalName())
	}
	e := f(version, opts...)
	if err := e.Load(rd, lo); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadAll loads every child of the container element under the cursor, such
// as m:Items in a response message, and leaves the cursor on its end tag.
func (r *Registry) LoadAll(rd *xmlstream.Reader, version propdef.Version, lo propbag.LoadOptions, opts ...Option) ([]*Entity, error) {
	var out []*Entity
	err := rd.ReadChildren(func() error {
		e, err := r.Load(rd, version, lo, opts...)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
