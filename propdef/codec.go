package propdef

import (
	"fmt"

	"github.com/smnsjas/go-ewscore/xmlstream"
)

// Codec converts between the wire element of a property and its Go value.
type Codec interface {
	// ReadValue parses the property element under the cursor. The cursor is on
	// the start tag and is left on the matching end tag.
	ReadValue(r *xmlstream.Reader, def *Definition) (any, error)
	// WriteValue writes the complete property element for v.
	WriteValue(w *xmlstream.Writer, def *Definition, v any) error
}

// Parser is implemented by codecs whose values have a text form.
type Parser interface {
	Parse(s string) (any, error)
}

// Instantiator is implemented by codecs of composite values.
type Instantiator interface {
	NewValue() Composite
}

type scalar[T any] struct {
	parse func(string) (T, error)
}

func (c scalar[T]) ReadValue(r *xmlstream.Reader, def *Definition) (any, error) {
	s, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	v, err := c.parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, def, err)
	}
	return v, nil
}

func (c scalar[T]) WriteValue(w *xmlstream.Writer, def *Definition, v any) error {
	if _, ok := v.(T); !ok {
		return fmt.Errorf("%w: %s holds %T", ErrValueType, def, v)
	}
	return w.WriteElementValue(def.Name, v)
}

func (c scalar[T]) Parse(s string) (any, error) {
	v, err := c.parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return v, nil
}

type enumCodec[E xmlstream.Enum] struct {
	byToken map[string]E
}

// EnumCodec returns a codec for an enumeration with the given values. Both
// wire tokens and value names are accepted when reading.
func EnumCodec[E xmlstream.Enum](values ...E) Codec {
	c := enumCodec[E]{byToken: make(map[string]E, 2*len(values))}
	for _, v := range values {
		c.byToken[v.EnumName()] = v
	}
	for _, v := range values {
		c.byToken[xmlstream.EnumToken(v)] = v
	}
	return c
}

func (c enumCodec[E]) ReadValue(r *xmlstream.Reader, def *Definition) (any, error) {
	s, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	v, ok := c.byToken[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown token %q", ErrParse, def, s)
	}
	return v, nil
}

func (c enumCodec[E]) WriteValue(w *xmlstream.Writer, def *Definition, v any) error {
	if _, ok := v.(E); !ok {
		return fmt.Errorf("%w: %s holds %T", ErrValueType, def, v)
	}
	return w.WriteElementValue(def.Name, v)
}

func (c enumCodec[E]) Parse(s string) (any, error) {
	v, ok := c.byToken[s]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token %q", ErrParse, s)
	}
	return v, nil
}

type complexCodec[T ComplexValue] struct {
	newValue func() T
}

// ComplexCodec returns the codec of a composite value type. newValue must
// return a fresh, empty value on every call.
func ComplexCodec[T ComplexValue](newValue func() T) Codec {
	return complexCodec[T]{newValue: newValue}
}

func (c complexCodec[T]) ReadValue(r *xmlstream.Reader, def *Definition) (any, error) {
	v := c.newValue()
	if err := v.ReadXML(r); err != nil {
		return nil, fmt.Errorf("read %s: %w", def, err)
	}
	return v, nil
}

func (c complexCodec[T]) WriteValue(w *xmlstream.Writer, def *Definition, v any) error {
	cv, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: %s holds %T", ErrValueType, def, v)
	}
	w.WriteStartElement(def.Name)
	if err := cv.WriteXML(w); err != nil {
		return fmt.Errorf("write %s: %w", def, err)
	}
	w.WriteEndElement()
	return nil
}

func (c complexCodec[T]) NewValue() Composite { return c.newValue() }
