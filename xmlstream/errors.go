package xmlstream

import (
	"errors"
	"fmt"
)

var (
	// ErrDeserialization is the parent of every error reported by Reader.
	ErrDeserialization = errors.New("xmlstream: deserialization failed")
	// ErrUnexpectedEOF is returned when the stream ends while more nodes are expected.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected end of stream", ErrDeserialization)
	// ErrUnexpectedElement is returned when a node does not have the expected name or type.
	ErrUnexpectedElement = fmt.Errorf("%w: unexpected element", ErrDeserialization)
	// ErrMalformed is returned when the underlying decoder rejects the input.
	ErrMalformed = fmt.Errorf("%w: malformed XML", ErrDeserialization)

	// ErrUnsupportedType is returned when a value has no wire representation.
	ErrUnsupportedType = errors.New("xmlstream: unsupported value type")
	// ErrNoOpenElement is returned when an attribute is written outside a start tag.
	ErrNoOpenElement = errors.New("xmlstream: attribute written outside a start tag")
)

// SyntaxError describes a wire shape mismatch found by Reader.
type SyntaxError struct {
	// Op is the reader operation that failed.
	Op string
	// Expected and Actual describe the node that was wanted and the node found.
	Expected string
	Actual   string
	// Line is the decoder's input line at the time of failure.
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.Expected != "" {
		msg += ": expected " + e.Expected
	}
	if e.Actual != "" {
		msg += ", found " + e.Actual
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ConversionError reports a value that FormatValue cannot convert.
type ConversionError struct {
	// Type is the Go type of the offending value.
	Type string
	// Target is the element or attribute being written, if known.
	Target string
}

func (e *ConversionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %s", ErrUnsupportedType, e.Type)
	}
	return fmt.Sprintf("%s: %s for %s", ErrUnsupportedType, e.Type, e.Target)
}

func (e *ConversionError) Unwrap() error { return ErrUnsupportedType }
