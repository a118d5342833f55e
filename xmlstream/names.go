package xmlstream

import "encoding/xml"

// Namespace is an XML namespace together with the prefix the writer uses for it.
type Namespace struct {
	Prefix string
	URI    string
}

// Well-known namespaces of the wire format.
var (
	Types    = Namespace{Prefix: "t", URI: "http://schemas.microsoft.com/exchange/services/2006/types"}
	Messages = Namespace{Prefix: "m", URI: "http://schemas.microsoft.com/exchange/services/2006/messages"}
	Errors   = Namespace{Prefix: "e", URI: "http://schemas.microsoft.com/exchange/services/2006/errors"}
	Soap     = Namespace{Prefix: "soap", URI: "http://schemas.xmlsoap.org/soap/envelope/"}
)

// xmlURI is the namespace bound to the reserved "xml" prefix.
const xmlURI = "http://www.w3.org/XML/1998/namespace"

// Name returns the qualified name of local in ns.
func (ns Namespace) Name(local string) QName {
	return QName{NS: ns, Local: local}
}

// QName is a namespace-qualified element or attribute name.
type QName struct {
	NS    Namespace
	Local string
}

// String returns the prefixed form, e.g. "t:Subject".
func (q QName) String() string {
	if q.NS.Prefix == "" {
		return q.Local
	}
	return q.NS.Prefix + ":" + q.Local
}

// Matches reports whether an xml.Name read from the wire denotes q.
func (q QName) Matches(n xml.Name) bool {
	return n.Local == q.Local && (n.Space == q.NS.URI || (q.NS.URI == "" && n.Space == q.NS.Prefix))
}

func formatName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}
