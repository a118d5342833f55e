package propdef

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smnsjas/go-ewscore/xmlstream"
)

var (
	// ErrUnknownVersion is returned by ParseVersion.
	ErrUnknownVersion = errors.New("propdef: unknown version")
	// ErrValueType is returned when a value does not have the Go type of its property.
	ErrValueType = errors.New("propdef: value has the wrong type for property")
	// ErrParse is returned when text cannot be parsed as a property value.
	ErrParse = errors.New("propdef: cannot parse property value")
)

// Definition describes one property of a schema. Definitions are created once
// at package initialization and compared by pointer; they must not be modified
// after they are added to a schema.
type Definition struct {
	// Name is the element name of the property inside the entity element.
	Name xmlstream.QName
	// FieldURI identifies the property in update operations and shapes.
	FieldURI string
	Kind     Kind
	Flags    Flags
	// Version is the first version that supports the property.
	Version Version
	// Nullable reports whether a missing value reads as nil rather than an error.
	Nullable bool
	Codec    Codec
}

// String returns the local element name.
func (d *Definition) String() string { return d.Name.Local }

// Has reports whether the property has every flag in f.
func (d *Definition) Has(f Flags) bool { return d.Flags.Has(f) }

// SupportedIn reports whether the property exists in version v.
func (d *Definition) SupportedIn(v Version) bool { return v.AtLeast(d.Version) }

// Since sets the minimum version and returns d.
func (d *Definition) Since(v Version) *Definition {
	d.Version = v
	return d
}

// AsNullable marks d nullable and returns it.
func (d *Definition) AsNullable() *Definition {
	d.Nullable = true
	return d
}

// IsComposite reports whether values of d are change-tracked composites.
func (d *Definition) IsComposite() bool { return d.Kind == KindComposite }

// WriteFieldURI writes the <t:FieldURI FieldURI="..."/> path element of d.
func (d *Definition) WriteFieldURI(w *xmlstream.Writer) error {
	w.WriteStartElement(xmlstream.Types.Name("FieldURI"))
	if err := w.WriteAttribute("FieldURI", d.FieldURI); err != nil {
		return err
	}
	w.WriteEndElement()
	return nil
}

// Parse converts text to a value of d, for codecs that support it.
func (d *Definition) Parse(s string) (any, error) {
	p, ok := d.Codec.(Parser)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no text form", ErrParse, d)
	}
	return p.Parse(s)
}

func newDef(local, uri string, kind Kind, flags Flags, nullable bool, c Codec) *Definition {
	return &Definition{
		Name:     xmlstream.Types.Name(local),
		FieldURI: uri,
		Kind:     kind,
		Flags:    flags,
		Nullable: nullable,
		Codec:    c,
	}
}

// NewString defines a nullable string property.
func NewString(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindString, flags, true, StringValue)
}

// NewBool defines a boolean property.
func NewBool(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindBoolean, flags, false, BoolValue)
}

// NewInt defines an integer property.
func NewInt(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindInteger, flags, false, IntValue)
}

// NewDouble defines a floating-point property.
func NewDouble(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindDouble, flags, false, DoubleValue)
}

// NewDateTime defines a date-time property. Values are time.Time in UTC.
func NewDateTime(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindDateTime, flags, false, DateTimeValue)
}

// NewBinary defines a nullable base64 property.
func NewBinary(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindBinary, flags, true, BinaryValue)
}

// NewGUID defines a GUID property.
func NewGUID(local, uri string, flags Flags) *Definition {
	return newDef(local, uri, KindGUID, flags, false, GUIDValue)
}

// NewEnum defines an enumeration property whose wire tokens are those of values.
func NewEnum[E xmlstream.Enum](local, uri string, flags Flags, values ...E) *Definition {
	return newDef(local, uri, KindEnum, flags, false, EnumCodec(values...))
}

// NewComposite defines a nullable composite property. newValue returns an
// empty value; it is used for reads and for auto-instantiation.
func NewComposite[T ComplexValue](local, uri string, flags Flags, newValue func() T) *Definition {
	return newDef(local, uri, KindComposite, flags, true, ComplexCodec(newValue))
}

// NewIdentity defines the identity property of a schema. Reading a missing
// identity never fails.
func NewIdentity(local, uri string, flags Flags, c Codec) *Definition {
	return newDef(local, uri, KindIdentity, flags, true, c)
}

// Scalar codecs for the built-in kinds.
var (
	StringValue Codec = scalar[string]{parse: func(s string) (string, error) { return s, nil }}
	BoolValue   Codec = scalar[bool]{parse: xmlstream.ParseBool}
	IntValue    Codec = scalar[int]{parse: strconv.Atoi}
	DoubleValue Codec = scalar[float64]{parse: func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}}
	DateTimeValue Codec = scalar[time.Time]{parse: xmlstream.ParseDateTime}
	BinaryValue   Codec = scalar[[]byte]{parse: base64.StdEncoding.DecodeString}
	GUIDValue     Codec = scalar[uuid.UUID]{parse: uuid.Parse}
)
