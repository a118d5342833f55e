package schema

// ImportanceLevel is the importance of an item.
type ImportanceLevel int

const (
	ImportanceLow ImportanceLevel = iota
	ImportanceNormal
	ImportanceHigh
)

// EnumName implements xmlstream.Enum.
func (i ImportanceLevel) EnumName() string {
	switch i {
	case ImportanceLow:
		return "Low"
	case ImportanceHigh:
		return "High"
	default:
		return "Normal"
	}
}

func (i ImportanceLevel) String() string { return i.EnumName() }

// BodyType is the format of a message body.
type BodyType int

const (
	BodyHTML BodyType = iota
	BodyText
)

// EnumName implements xmlstream.Enum.
func (b BodyType) EnumName() string {
	if b == BodyText {
		return "Text"
	}
	return "HTML"
}

func (b BodyType) String() string { return b.EnumName() }

func parseBodyType(s string) (BodyType, bool) {
	switch s {
	case "HTML":
		return BodyHTML, true
	case "Text":
		return BodyText, true
	}
	return 0, false
}

// EmailAddressKey indexes the entries of an EmailAddressDictionary.
type EmailAddressKey int

const (
	EmailAddress1 EmailAddressKey = iota + 1
	EmailAddress2
	EmailAddress3
)

// EnumName implements xmlstream.Enum.
func (k EmailAddressKey) EnumName() string {
	switch k {
	case EmailAddress1:
		return "EmailAddress1"
	case EmailAddress2:
		return "EmailAddress2"
	case EmailAddress3:
		return "EmailAddress3"
	}
	return "EmailAddressUnknown"
}

func (k EmailAddressKey) String() string { return k.EnumName() }

// ParseEmailAddressKey parses an entry key.
func ParseEmailAddressKey(s string) (EmailAddressKey, bool) {
	for _, k := range []EmailAddressKey{EmailAddress1, EmailAddress2, EmailAddress3} {
		if s == k.EnumName() {
			return k, true
		}
	}
	return 0, false
}
