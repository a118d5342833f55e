package propdef

import (
	"encoding/xml"
	"fmt"
	"slices"

	"github.com/smnsjas/go-ewscore/xmlstream"
)

// ChangeNames are the element names used by partial updates of a schema.
type ChangeNames struct {
	// List wraps the changes of several entities, e.g. m:ItemChanges.
	List xmlstream.QName
	// Change wraps all updates of one entity, e.g. t:ItemChange.
	Change xmlstream.QName
	// SetField and DeleteField name the two update operations.
	SetField    xmlstream.QName
	DeleteField xmlstream.QName
}

// ItemChanges are the change names of item schemas.
var ItemChanges = ChangeNames{
	List:        xmlstream.Messages.Name("ItemChanges"),
	Change:      xmlstream.Types.Name("ItemChange"),
	SetField:    xmlstream.Types.Name("SetItemField"),
	DeleteField: xmlstream.Types.Name("DeleteItemField"),
}

// FolderChanges are the change names of folder schemas.
var FolderChanges = ChangeNames{
	List:        xmlstream.Messages.Name("FolderChanges"),
	Change:      xmlstream.Types.Name("FolderChange"),
	SetField:    xmlstream.Types.Name("SetFolderField"),
	DeleteField: xmlstream.Types.Name("DeleteFolderField"),
}

// Schema is the ordered property table of one entity type.
type Schema struct {
	// Name is a human-readable schema name.
	Name string
	// Element is the element that wraps an entity of this schema.
	Element xmlstream.QName
	Changes ChangeNames
	// ID is the identity property, or nil.
	ID *Definition

	props  []*Definition
	byName map[xml.Name]*Definition
}

// NewSchema returns a schema over props in declaration order. id, when not
// nil, is added first unless props already contain it. Duplicate element
// names panic.
func NewSchema(name string, element xmlstream.QName, changes ChangeNames, id *Definition, props ...*Definition) *Schema {
	s := &Schema{
		Name:    name,
		Element: element,
		Changes: changes,
		ID:      id,
		byName:  make(map[xml.Name]*Definition, len(props)+1),
	}
	if id != nil && !slices.Contains(props, id) {
		s.add(id)
	}
	for _, p := range props {
		s.add(p)
	}
	return s
}

// Extend returns a new schema with all properties of s followed by props.
func (s *Schema) Extend(name string, element xmlstream.QName, props ...*Definition) *Schema {
	derived := NewSchema(name, element, s.Changes, s.ID, s.props...)
	for _, p := range props {
		derived.add(p)
	}
	return derived
}

func (s *Schema) add(p *Definition) {
	key := xml.Name{Space: p.Name.NS.URI, Local: p.Name.Local}
	if _, dup := s.byName[key]; dup {
		panic(fmt.Sprintf("propdef: schema %s: duplicate property %s", s.Name, p.Name))
	}
	s.byName[key] = p
	s.props = append(s.props, p)
}

// Lookup returns the property whose element name is n, as read from the wire.
func (s *Schema) Lookup(n xml.Name) (*Definition, bool) {
	def, ok := s.byName[n]
	return def, ok
}

// LookupLocal returns the property with local element name local in the
// schema's namespace.
func (s *Schema) LookupLocal(local string) (*Definition, bool) {
	return s.Lookup(xml.Name{Space: s.Element.NS.URI, Local: local})
}

// Properties returns the properties in declaration order. The slice must not be modified.
func (s *Schema) Properties() []*Definition { return s.props }

// Contains reports whether def belongs to s.
func (s *Schema) Contains(def *Definition) bool {
	got, ok := s.byName[xml.Name{Space: def.Name.NS.URI, Local: def.Name.Local}]
	return ok && got == def
}

// IsFirstClass reports whether def is part of the first-class base shape.
// Summary responses also exclude NotInSummary properties.
func (s *Schema) IsFirstClass(def *Definition, summaryOnly bool) bool {
	if !s.Contains(def) || def.Has(MustBeExplicitlyLoaded) {
		return false
	}
	return !summaryOnly || !def.Has(NotInSummary)
}

// FirstClass returns the properties of the first-class base shape in declaration order.
func (s *Schema) FirstClass(summaryOnly bool) []*Definition {
	var out []*Definition
	for _, p := range s.props {
		if s.IsFirstClass(p, summaryOnly) {
			out = append(out, p)
		}
	}
	return out
}
