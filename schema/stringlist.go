package schema

import (
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// StringList is an ordered list of strings, such as item categories.
type StringList struct {
	propdef.Tracked
	items []string
}

// NewStringList returns a list holding items.
func NewStringList(items ...string) *StringList {
	return &StringList{items: slices.Clone(items)}
}

// Values returns a copy of the items.
func (l *StringList) Values() []string { return slices.Clone(l.items) }

// Len returns the number of items.
func (l *StringList) Len() int { return len(l.items) }

// Contains reports whether s is in the list.
func (l *StringList) Contains(s string) bool { return slices.Contains(l.items, s) }

// Add appends s.
func (l *StringList) Add(s ...string) {
	if len(s) == 0 {
		return
	}
	l.items = append(l.items, s...)
	l.Changed()
}

// Remove deletes the first occurrence of s.
func (l *StringList) Remove(s string) bool {
	i := slices.Index(l.items, s)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.Changed()
	return true
}

// Clear removes every item.
func (l *StringList) Clear() {
	if len(l.items) == 0 {
		return
	}
	l.items = nil
	l.Changed()
}

// ReadXML implements propdef.ComplexValue.
func (l *StringList) ReadXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		if !r.IsStartElement(xmlstream.Types, "String") {
			return nil
		}
		s, err := r.ReadValue()
		if err != nil {
			return err
		}
		l.items = append(l.items, s)
		return nil
	})
}

// WriteXML implements propdef.ComplexValue.
func (l *StringList) WriteXML(w *xmlstream.Writer) error {
	for _, s := range l.items {
		if err := w.WriteElementValue(xmlstream.Types.Name("String"), s); err != nil {
			return err
		}
	}
	return nil
}
