package xmlstream

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateTimeFormat is the wire layout of date-time values. Values are written in UTC.
const DateTimeFormat = "2006-01-02T15:04:05Z"

// Enum is implemented by enumerations. EnumName returns the Go identifier name
// of the value, which doubles as its wire token when no explicit mapping exists.
type Enum interface {
	EnumName() string
}

// WireEnum is an Enum with explicit wire tokens for some or all of its values.
type WireEnum interface {
	Enum
	// WireToken returns the wire token of the value, or false to fall back to EnumName.
	WireToken() (string, bool)
}

// Searchable is implemented by values that render themselves for search predicates.
type Searchable interface {
	SearchString() string
}

// EnumToken returns the wire token of e.
func EnumToken(e Enum) string {
	if we, ok := e.(WireEnum); ok {
		if tok, ok := we.WireToken(); ok {
			return tok
		}
	}
	return e.EnumName()
}

// FormatValue converts v to its wire string. It is shared by attribute and
// element writers and has no side effects.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case Enum:
		return EnumToken(val), nil
	case time.Time:
		return val.UTC().Format(DateTimeFormat), nil
	case Searchable:
		return val.SearchString(), nil
	case int:
		return strconv.Itoa(val), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(val), nil
	case uuid.UUID:
		return val.String(), nil
	default:
		return "", &ConversionError{Type: fmt.Sprintf("%T", v)}
	}
}

// ParseDateTime parses a wire date-time. Offsets other than Z are accepted.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date-time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseBool parses the wire boolean literals. "1" and "0" are accepted as
// the schema permits them.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("parse boolean %q: invalid literal", s)
}
