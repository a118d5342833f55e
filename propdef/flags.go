package propdef

import "strings"

// Flags is the set of capabilities of a property.
type Flags uint16

const (
	// CanSet allows assignment while the entity is new.
	CanSet Flags = 1 << iota
	// CanUpdate allows assignment on an existing entity and set operations in updates.
	CanUpdate
	// CanDelete allows assigning nil on an existing entity and delete operations in updates.
	CanDelete
	// CanFind allows the property in search restrictions and sort orders.
	CanFind
	// MustBeExplicitlyLoaded excludes the property from the first-class base shape.
	MustBeExplicitlyLoaded
	// AutoInstantiateOnRead creates an empty composite value on first read.
	AutoInstantiateOnRead
	// NotInSummary excludes the property from summary (find) responses.
	NotInSummary
)

// Common flag combinations.
const (
	ReadOnly  Flags = CanFind
	Writable  Flags = CanSet | CanUpdate | CanDelete | CanFind
	Updatable Flags = CanSet | CanUpdate | CanFind
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{CanSet, "CanSet"},
	{CanUpdate, "CanUpdate"},
	{CanDelete, "CanDelete"},
	{CanFind, "CanFind"},
	{MustBeExplicitlyLoaded, "MustBeExplicitlyLoaded"},
	{AutoInstantiateOnRead, "AutoInstantiateOnRead"},
	{NotInSummary, "NotInSummary"},
}

// Has reports whether every flag in want is set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// String returns the set flag names joined with "|".
func (f Flags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Kind is the declared value category of a property.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindInteger
	KindDouble
	KindDateTime
	KindEnum
	KindBinary
	KindGUID
	KindIdentity
	KindComposite
)

var kindNames = [...]string{
	KindString:    "String",
	KindBoolean:   "Boolean",
	KindInteger:   "Integer",
	KindDouble:    "Double",
	KindDateTime:  "DateTime",
	KindEnum:      "Enum",
	KindBinary:    "Binary",
	KindGUID:      "GUID",
	KindIdentity:  "Identity",
	KindComposite: "Composite",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}
