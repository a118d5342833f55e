package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/update"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// emailAddressURI is the field URI of a single dictionary entry.
const emailAddressURI = "contacts:EmailAddress"

// EmailAddressDictionary holds up to three addresses of a contact. It keeps
// a change log per key, and updates are written one entry at a time.
type EmailAddressDictionary struct {
	propdef.Tracked
	entries map[EmailAddressKey]string

	added    []EmailAddressKey
	modified []EmailAddressKey
	removed  []EmailAddressKey
}

// NewEmailAddressDictionary returns an empty dictionary.
func NewEmailAddressDictionary() *EmailAddressDictionary {
	return &EmailAddressDictionary{entries: make(map[EmailAddressKey]string)}
}

// Get returns the address stored under k.
func (d *EmailAddressDictionary) Get(k EmailAddressKey) (string, bool) {
	v, ok := d.entries[k]
	return v, ok
}

// Keys returns the keys with an address, in key order.
func (d *EmailAddressDictionary) Keys() []EmailAddressKey {
	return slices.Sorted(maps.Keys(d.entries))
}

// Len returns the number of entries.
func (d *EmailAddressDictionary) Len() int { return len(d.entries) }

// Set stores address under k.
func (d *EmailAddressDictionary) Set(k EmailAddressKey, address string) {
	old, ok := d.entries[k]
	if ok && old == address {
		return
	}
	if d.entries == nil {
		d.entries = make(map[EmailAddressKey]string)
	}
	d.entries[k] = address
	switch {
	case ok:
		if !slices.Contains(d.added, k) {
			addKey(&d.modified, k)
		}
	case removeKey(&d.removed, k):
		addKey(&d.modified, k)
	default:
		addKey(&d.added, k)
	}
	d.Changed()
}

// Remove deletes the address stored under k.
func (d *EmailAddressDictionary) Remove(k EmailAddressKey) bool {
	if _, ok := d.entries[k]; !ok {
		return false
	}
	delete(d.entries, k)
	if !removeKey(&d.added, k) {
		removeKey(&d.modified, k)
		addKey(&d.removed, k)
	}
	d.Changed()
	return true
}

// ClearChangeLog implements propdef.ChangeLogger.
func (d *EmailAddressDictionary) ClearChangeLog() {
	d.added, d.modified, d.removed = nil, nil, nil
}

func addKey(keys *[]EmailAddressKey, k EmailAddressKey) {
	if !slices.Contains(*keys, k) {
		*keys = append(*keys, k)
	}
}

func removeKey(keys *[]EmailAddressKey, k EmailAddressKey) bool {
	i := slices.Index(*keys, k)
	if i < 0 {
		return false
	}
	*keys = slices.Delete(*keys, i, i+1)
	return true
}

// ReadXML implements propdef.ComplexValue.
func (d *EmailAddressDictionary) ReadXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		if !r.IsStartElement(xmlstream.Types, "Entry") {
			return nil
		}
		s, _ := r.Attr("Key")
		k, ok := ParseEmailAddressKey(s)
		if !ok {
			return fmt.Errorf("%w: email address key %q", propdef.ErrParse, s)
		}
		v, err := r.ReadValue()
		if err != nil {
			return err
		}
		if d.entries == nil {
			d.entries = make(map[EmailAddressKey]string)
		}
		d.entries[k] = v
		return nil
	})
}

// WriteXML implements propdef.ComplexValue.
func (d *EmailAddressDictionary) WriteXML(w *xmlstream.Writer) error {
	for _, k := range d.Keys() {
		if err := d.writeEntry(w, k); err != nil {
			return err
		}
	}
	return nil
}

func (d *EmailAddressDictionary) writeEntry(w *xmlstream.Writer, k EmailAddressKey) error {
	w.WriteStartElement(xmlstream.Types.Name("Entry"))
	if err := w.WriteAttribute("Key", k); err != nil {
		return err
	}
	w.WriteString(d.entries[k])
	w.WriteEndElement()
	return nil
}

func writeIndexedFieldURI(w *xmlstream.Writer, k EmailAddressKey) error {
	w.WriteStartElement(xmlstream.Types.Name("IndexedFieldURI"))
	if err := w.WriteAttribute("FieldURI", emailAddressURI); err != nil {
		return err
	}
	if err := w.WriteAttribute("FieldIndex", k); err != nil {
		return err
	}
	w.WriteEndElement()
	return nil
}

// WriteSetUpdate implements propdef.CustomUpdater. Added and modified
// entries are set and removed entries deleted, one operation per entry.
func (d *EmailAddressDictionary) WriteSetUpdate(w *xmlstream.Writer, s *propdef.Schema, def *propdef.Definition) (bool, error) {
	for _, k := range slices.Concat(d.added, d.modified) {
		err := update.WriteSetField(w, s,
			func() error { return writeIndexedFieldURI(w, k) },
			func() error {
				w.WriteStartElement(def.Name)
				if err := d.writeEntry(w, k); err != nil {
					return err
				}
				w.WriteEndElement()
				return nil
			})
		if err != nil {
			return false, err
		}
	}
	for _, k := range d.removed {
		if err := update.WriteDeleteField(w, s, func() error { return writeIndexedFieldURI(w, k) }); err != nil {
			return false, err
		}
	}
	return true, nil
}

// WriteDeleteUpdate implements propdef.CustomUpdater. Every entry the
// dictionary held, and every entry removed before, is deleted.
func (d *EmailAddressDictionary) WriteDeleteUpdate(w *xmlstream.Writer, s *propdef.Schema, _ *propdef.Definition) (bool, error) {
	keys := d.Keys()
	for _, k := range d.removed {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		if err := update.WriteDeleteField(w, s, func() error { return writeIndexedFieldURI(w, k) }); err != nil {
			return false, err
		}
	}
	return true, nil
}
