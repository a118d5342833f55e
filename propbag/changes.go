package propbag

import (
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
)

// keyList is a set of properties that remembers insertion order.
type keyList []*propdef.Definition

func (l keyList) has(def *propdef.Definition) bool { return slices.Contains(l, def) }

func (l *keyList) add(def *propdef.Definition) {
	if !l.has(def) {
		*l = append(*l, def)
	}
}

func (l *keyList) remove(def *propdef.Definition) bool {
	i := slices.Index(*l, def)
	if i < 0 {
		return false
	}
	*l = slices.Delete(*l, i, i+1)
	return true
}

// Deletion is an entry of the deleted change set.
type Deletion struct {
	Property *propdef.Definition
	// Prior is the value held before the deletion, or nil.
	Prior any
}

type deletions []Deletion

func (d deletions) index(def *propdef.Definition) int {
	return slices.IndexFunc(d, func(e Deletion) bool { return e.Property == def })
}

func (d deletions) has(def *propdef.Definition) bool { return d.index(def) >= 0 }

func (d *deletions) remove(def *propdef.Definition) bool {
	i := d.index(def)
	if i < 0 {
		return false
	}
	*d = slices.Delete(*d, i, i+1)
	return true
}
