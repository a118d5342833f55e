// Package update writes partial update payloads from the change sets of a
// property bag.
//
// For one entity the payload is the schema's change element holding the
// entity identity and one operation per changed property:
//
//	<t:ItemChange>
//	  <t:ItemId Id="..." ChangeKey="..."/>
//	  <t:Updates>
//	    <t:SetItemField>
//	      <t:FieldURI FieldURI="item:Subject"/>
//	      <t:Message><t:Subject>New subject</t:Subject></t:Message>
//	    </t:SetItemField>
//	    <t:DeleteItemField>
//	      <t:FieldURI FieldURI="item:Categories"/>
//	    </t:DeleteItemField>
//	  </t:Updates>
//	</t:ItemChange>
//
// Added properties are written first, then modified ones, then deletions,
// each group in the order the changes were made. Properties without the
// capability for their operation are skipped.
package update

import (
	"errors"
	"fmt"

	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// ErrNoIdentity is returned when the entity to update has no identity value.
var ErrNoIdentity = errors.New("update: entity has no identity")

// Updates is the element that holds the operations of one change.
var Updates = xmlstream.Types.Name("Updates")

// Pending returns the number of operations WriteChange would write, not
// counting operations a custom updater writes itself.
func Pending(b *propbag.Bag) int {
	n := 0
	for _, def := range b.Added() {
		if def.Has(propdef.CanUpdate) {
			n++
		}
	}
	for _, def := range b.Modified() {
		if def.Has(propdef.CanUpdate) {
			n++
		}
	}
	for _, d := range b.Deleted() {
		if d.Property.Has(propdef.CanDelete) {
			n++
		}
	}
	return n
}

// WriteChange writes the change element of the entity held by b.
func WriteChange(w *xmlstream.Writer, b *propbag.Bag) error {
	schema := b.Schema()
	if schema.ID != nil {
		if id, ok := b.Lookup(schema.ID); !ok || id == nil {
			return fmt.Errorf("%w: %s", ErrNoIdentity, schema.Name)
		}
	}
	w.WriteStartElement(schema.Changes.Change)
	if schema.ID != nil {
		if err := b.WriteProperty(w, schema.ID); err != nil {
			return err
		}
	}

	w.WriteStartElement(Updates)
	for _, def := range b.Added() {
		if err := writeSet(w, b, schema, def); err != nil {
			return err
		}
	}
	for _, def := range b.Modified() {
		if err := writeSet(w, b, schema, def); err != nil {
			return err
		}
	}
	for _, d := range b.Deleted() {
		if err := writeDelete(w, schema, d); err != nil {
			return err
		}
	}
	w.WriteEndElement()

	w.WriteEndElement()
	return nil
}

// WriteChanges writes the change list element holding a change per bag.
// All bags must share one kind of change names.
func WriteChanges(w *xmlstream.Writer, bags ...*propbag.Bag) error {
	if len(bags) == 0 {
		return nil
	}
	w.WriteStartElement(bags[0].Schema().Changes.List)
	for _, b := range bags {
		if err := WriteChange(w, b); err != nil {
			return err
		}
	}
	w.WriteEndElement()
	return nil
}

func writeSet(w *xmlstream.Writer, b *propbag.Bag, schema *propdef.Schema, def *propdef.Definition) error {
	if !def.Has(propdef.CanUpdate) {
		return nil
	}
	v, _ := b.Lookup(def)
	if cu, ok := v.(propdef.CustomUpdater); ok {
		wrote, err := cu.WriteSetUpdate(w, schema, def)
		if err != nil {
			return fmt.Errorf("update %s: %w", def, err)
		}
		if wrote {
			return nil
		}
	}

	return WriteSetField(w, schema,
		func() error { return def.WriteFieldURI(w) },
		func() error { return b.WriteProperty(w, def) })
}

func writeDelete(w *xmlstream.Writer, schema *propdef.Schema, d propbag.Deletion) error {
	def := d.Property
	if !def.Has(propdef.CanDelete) {
		return nil
	}
	if cu, ok := d.Prior.(propdef.CustomUpdater); ok {
		wrote, err := cu.WriteDeleteUpdate(w, schema, def)
		if err != nil {
			return fmt.Errorf("delete %s: %w", def, err)
		}
		if wrote {
			return nil
		}
	}
	return WriteDeleteField(w, schema, func() error { return def.WriteFieldURI(w) })
}

// WriteSetField writes a set operation: path writes the field path and value
// writes the property element inside the schema's entity element. Custom
// updaters use it to set single entries of indexed properties.
func WriteSetField(w *xmlstream.Writer, schema *propdef.Schema, path func() error, value func() error) error {
	w.WriteStartElement(schema.Changes.SetField)
	if err := path(); err != nil {
		return err
	}
	w.WriteStartElement(schema.Element)
	if err := value(); err != nil {
		return err
	}
	w.WriteEndElement()
	w.WriteEndElement()
	return nil
}

// WriteDeleteField writes a delete operation; path writes the field path.
func WriteDeleteField(w *xmlstream.Writer, schema *propdef.Schema, path func() error) error {
	w.WriteStartElement(schema.Changes.DeleteField)
	if err := path(); err != nil {
		return err
	}
	w.WriteEndElement()
	return nil
}
