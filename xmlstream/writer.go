package xmlstream

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"

	"github.com/beevik/etree"
)

// Writer emits namespace-qualified markup to a buffered sink.
//
// Start and end calls must be balanced by the caller; the writer only keeps
// the names it needs to close tags. Namespace prefixes are declared on the
// first element that uses them within a scope.
type Writer struct {
	w    *bufio.Writer
	open bool // a start tag is written but not yet closed with '>'

	names  []string            // qualified names of open elements
	scopes []map[string]string // declarations made on each open element
}

// NewWriter returns a Writer over dst. Call Flush when done.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(dst)}
}

// Flush writes buffered data to the underlying sink and returns the first
// error encountered while writing.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteStartElement opens element q.
func (w *Writer) WriteStartElement(q QName) {
	w.startTag(q.String())
	if q.NS.URI != "" && w.lookup(q.NS.Prefix) != q.NS.URI {
		w.declare(q.NS.Prefix, q.NS.URI)
	}
}

func (w *Writer) startTag(name string) {
	w.closeStart()
	w.w.WriteString("<" + name)
	w.names = append(w.names, name)
	w.scopes = append(w.scopes, nil)
	w.open = true
}

// WriteEndElement closes the innermost open element. An element without
// content is closed with "/>".
func (w *Writer) WriteEndElement() {
	if len(w.names) == 0 {
		return
	}
	name := w.names[len(w.names)-1]
	w.names = w.names[:len(w.names)-1]
	w.scopes = w.scopes[:len(w.scopes)-1]
	if w.open {
		w.w.WriteString("/>")
		w.open = false
		return
	}
	w.w.WriteString("</" + name + ">")
}

// WriteNamespace declares ns on the open start tag unless it is already in scope.
func (w *Writer) WriteNamespace(ns Namespace) error {
	if !w.open {
		return ErrNoOpenElement
	}
	if w.lookup(ns.Prefix) != ns.URI {
		w.declare(ns.Prefix, ns.URI)
	}
	return nil
}

// WriteAttribute writes an unqualified attribute on the open start tag.
func (w *Writer) WriteAttribute(local string, v any) error {
	s, err := FormatValue(v)
	if err != nil {
		return withTarget(err, "attribute "+local)
	}
	if !w.open {
		return ErrNoOpenElement
	}
	w.attr(local, s)
	return nil
}

// WritePrefixedAttribute writes a namespace-qualified attribute on the open start tag.
func (w *Writer) WritePrefixedAttribute(ns Namespace, local string, v any) error {
	q := ns.Name(local)
	s, err := FormatValue(v)
	if err != nil {
		return withTarget(err, "attribute "+q.String())
	}
	if !w.open {
		return ErrNoOpenElement
	}
	if ns.URI != "" && w.lookup(ns.Prefix) != ns.URI {
		w.declare(ns.Prefix, ns.URI)
	}
	w.attr(q.String(), s)
	return nil
}

// WriteElementValue writes q with the converted value as its content. An
// empty value still produces an explicit element. Nothing is written when
// the value cannot be converted.
func (w *Writer) WriteElementValue(q QName, v any) error {
	s, err := FormatValue(v)
	if err != nil {
		return withTarget(err, "element "+q.String())
	}
	w.WriteStartElement(q)
	w.WriteString(s)
	w.WriteEndElement()
	return nil
}

// WriteValue writes the converted value as text content of the open element.
func (w *Writer) WriteValue(v any) error {
	s, err := FormatValue(v)
	if err != nil {
		return withTarget(err, w.current())
	}
	w.WriteString(s)
	return nil
}

// WriteString writes escaped character data.
func (w *Writer) WriteString(s string) {
	w.closeStart()
	_ = xml.EscapeText(w.w, []byte(s))
}

// WriteRaw writes markup verbatim.
func (w *Writer) WriteRaw(markup string) {
	w.closeStart()
	w.w.WriteString(markup)
}

// WriteDocument splices every element at the top level of doc.
func (w *Writer) WriteDocument(doc *etree.Document) error {
	for _, tok := range doc.Child {
		if e, ok := tok.(*etree.Element); ok {
			if err := w.WriteNode(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteNode copies e and its descendants. A namespace is declared on a
// copied element only when the writer's in-scope URI for its prefix differs,
// so grafted markup neither repeats nor loses declarations.
func (w *Writer) WriteNode(e *etree.Element) error {
	if e == nil {
		return errors.New("xmlstream: nil node")
	}
	name := e.Tag
	if e.Space != "" {
		name = e.Space + ":" + e.Tag
	}
	w.startTag(name)

	for _, a := range e.Attr {
		if prefix, ok := declaredPrefix(a); ok && w.lookup(prefix) != a.Value {
			w.declare(prefix, a.Value)
		}
	}
	if uri := e.NamespaceURI(); w.lookup(e.Space) != uri && (uri != "" || e.Space == "") {
		w.declare(e.Space, uri)
	}

	for i := range e.Attr {
		a := &e.Attr[i]
		if _, ok := declaredPrefix(*a); ok {
			continue
		}
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
			if uri := a.NamespaceURI(); uri != "" && a.Space != "xml" && w.lookup(a.Space) != uri {
				w.declare(a.Space, uri)
			}
		}
		w.attr(key, a.Value)
	}

	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if err := w.WriteNode(t); err != nil {
				return err
			}
		case *etree.CharData:
			w.WriteString(t.Data)
		case *etree.Comment:
			w.WriteRaw("<!--" + t.Data + "-->")
		case *etree.ProcInst:
			w.WriteRaw("<?" + t.Target + " " + t.Inst + "?>")
		}
	}
	w.WriteEndElement()
	return nil
}

func declaredPrefix(a etree.Attr) (string, bool) {
	switch {
	case a.Space == "xmlns":
		return a.Key, true
	case a.Space == "" && a.Key == "xmlns":
		return "", true
	}
	return "", false
}

func (w *Writer) closeStart() {
	if w.open {
		w.w.WriteByte('>')
		w.open = false
	}
}

func (w *Writer) attr(name, value string) {
	w.w.WriteString(" " + name + `="`)
	_ = xml.EscapeText(w.w, []byte(value))
	w.w.WriteByte('"')
}

// declare writes a namespace declaration on the open start tag.
func (w *Writer) declare(prefix, uri string) {
	if prefix == "" {
		w.attr("xmlns", uri)
	} else {
		w.attr("xmlns:"+prefix, uri)
	}
	top := len(w.scopes) - 1
	if w.scopes[top] == nil {
		w.scopes[top] = make(map[string]string)
	}
	w.scopes[top][prefix] = uri
}

func (w *Writer) lookup(prefix string) string {
	if prefix == "xml" {
		return xmlURI
	}
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if uri, ok := w.scopes[i][prefix]; ok {
			return uri
		}
	}
	return ""
}

func (w *Writer) current() string {
	if len(w.names) == 0 {
		return ""
	}
	return "element " + w.names[len(w.names)-1]
}

func withTarget(err error, target string) error {
	var ce *ConversionError
	if errors.As(err, &ce) && ce.Target == "" {
		ce.Target = target
	}
	return err
}
