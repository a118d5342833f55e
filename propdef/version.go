package propdef

import (
	"fmt"
	"strings"
)

// Version is a server protocol version. Versions are ordered; a property
// introduced in one version is available in every later one.
type Version int

const (
	// Exchange2007SP1 is the oldest supported version and the default minimum.
	Exchange2007SP1 Version = iota
	Exchange2010
	Exchange2010SP1
	Exchange2010SP2
	Exchange2013
	Exchange2013SP1
	Exchange2016
)

// Latest is the newest version known to this package.
const Latest = Exchange2016

var versionNames = [...]string{
	Exchange2007SP1: "Exchange2007SP1",
	Exchange2010:    "Exchange2010",
	Exchange2010SP1: "Exchange2010SP1",
	Exchange2010SP2: "Exchange2010SP2",
	Exchange2013:    "Exchange2013",
	Exchange2013SP1: "Exchange2013SP1",
	Exchange2016:    "Exchange2016",
}

// Wire tokens of the RequestServerVersion header.
var versionTokens = [...]string{
	Exchange2007SP1: "Exchange2007_SP1",
	Exchange2010:    "Exchange2010",
	Exchange2010SP1: "Exchange2010_SP1",
	Exchange2010SP2: "Exchange2010_SP2",
	Exchange2013:    "Exchange2013",
	Exchange2013SP1: "Exchange2013_SP1",
	Exchange2016:    "Exchange2016",
}

func (v Version) valid() bool { return v >= Exchange2007SP1 && v <= Latest }

// String returns the version name.
func (v Version) String() string {
	if !v.valid() {
		return fmt.Sprintf("Version(%d)", int(v))
	}
	return versionNames[v]
}

// EnumName implements xmlstream.Enum.
func (v Version) EnumName() string { return v.String() }

// WireToken implements xmlstream.WireEnum.
func (v Version) WireToken() (string, bool) {
	if !v.valid() {
		return "", false
	}
	return versionTokens[v], true
}

// AtLeast reports whether v is the same as or newer than min.
func (v Version) AtLeast(min Version) bool { return v >= min }

// ParseVersion parses a version name or wire token, case-insensitively.
func ParseVersion(s string) (Version, error) {
	for v := Exchange2007SP1; v <= Latest; v++ {
		if strings.EqualFold(s, versionNames[v]) || strings.EqualFold(s, versionTokens[v]) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}
