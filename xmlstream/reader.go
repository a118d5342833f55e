package xmlstream

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// NodeType identifies the kind of node under the reader's cursor.
type NodeType int

const (
	// NodeNone is the cursor state before the first Read.
	NodeNone NodeType = iota
	// NodeStartElement is an element start tag (also produced for <a/>).
	NodeStartElement
	// NodeEndElement is an element end tag (also produced for <a/>).
	NodeEndElement
	// NodeText is a run of character data, adjacent runs merged.
	NodeText
)

// String returns a string representation of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeNone:
		return "None"
	case NodeStartElement:
		return "StartElement"
	case NodeEndElement:
		return "EndElement"
	case NodeText:
		return "Text"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type node struct {
	typ  NodeType
	name xml.Name
	attr []xml.Attr
	text string
}

// Reader is a forward-only cursor over an XML byte stream.
type Reader struct {
	dec *xml.Decoder

	cur   node
	depth int // depth of cur; the document element is at depth 0
	level int // number of open elements after cur

	// One token of decoder lookahead, used to end a merged text run, and one
	// node of cursor lookahead, used by IsEmptyElement. Both hold raw data.
	tok  xml.Token
	peek *node

	// scopes holds the namespace declarations of each open element, prefix → URI.
	scopes []map[string]string
}

// NewReader returns a Reader over src. A leading UTF-8 byte order mark is discarded.
func NewReader(src io.Reader) *Reader {
	br := bufio.NewReader(src)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &Reader{dec: xml.NewDecoder(br)}
}

// NodeType returns the type of the current node.
func (r *Reader) NodeType() NodeType { return r.cur.typ }

// Name returns the resolved name of the current element. Name.Space holds the namespace URI.
func (r *Reader) Name() xml.Name { return r.cur.name }

// LocalName returns the local name of the current element.
func (r *Reader) LocalName() string { return r.cur.name.Local }

// NamespaceURI returns the namespace URI of the current element.
func (r *Reader) NamespaceURI() string { return r.cur.name.Space }

// Text returns the character data of the current text node.
func (r *Reader) Text() string { return r.cur.text }

// Depth returns the nesting depth of the current node.
func (r *Reader) Depth() int { return r.depth }

// Attr returns the value of the unqualified attribute local on the current element.
func (r *Reader) Attr(local string) (string, bool) {
	for _, a := range r.cur.attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns the attributes of the current element, namespace declarations included.
func (r *Reader) Attrs() []xml.Attr { return r.cur.attr }

// IsStartElement reports whether the cursor is on the start tag of ns:local.
func (r *Reader) IsStartElement(ns Namespace, local string) bool {
	return r.cur.typ == NodeStartElement && ns.Name(local).Matches(r.cur.name)
}

// IsEndElement reports whether the cursor is on the end tag of ns:local.
func (r *Reader) IsEndElement(ns Namespace, local string) bool {
	return r.cur.typ == NodeEndElement && ns.Name(local).Matches(r.cur.name)
}

// Read advances to the next logical node, skipping whitespace-only text.
func (r *Reader) Read() error {
	return r.advance("Read", false)
}

// ReadRaw advances to the next node without skipping whitespace-only text.
func (r *Reader) ReadRaw() error {
	return r.advance("ReadRaw", true)
}

func (r *Reader) advance(op string, raw bool) error {
	for {
		n, err := r.next()
		if err != nil {
			return r.wrap(op, err)
		}
		if !raw && n.typ == NodeText && isWhitespace(n.text) {
			continue
		}
		r.moveTo(n)
		return nil
	}
}

// next returns the lookahead node if there is one, else fetches a new one.
func (r *Reader) next() (node, error) {
	if r.peek != nil {
		n := *r.peek
		r.peek = nil
		return n, nil
	}
	return r.fetch()
}

// fetch pulls decoder tokens until one logical node is complete.
func (r *Reader) fetch() (node, error) {
	var text strings.Builder
	inText := false
	for {
		tok, err := r.token()
		if errors.Is(err, io.EOF) && inText {
			return node{typ: NodeText, text: text.String()}, nil
		}
		if err != nil {
			return node{}, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
			inText = true
		case xml.StartElement:
			if inText {
				r.tok = t
				return node{typ: NodeText, text: text.String()}, nil
			}
			return node{typ: NodeStartElement, name: t.Name, attr: t.Attr}, nil
		case xml.EndElement:
			if inText {
				r.tok = t
				return node{typ: NodeText, text: text.String()}, nil
			}
			return node{typ: NodeEndElement, name: t.Name}, nil
		}
		// Comments, processing instructions and directives carry no values.
	}
}

func (r *Reader) token() (xml.Token, error) {
	if r.tok != nil {
		t := r.tok
		r.tok = nil
		return t, nil
	}
	return r.dec.Token()
}

func (r *Reader) moveTo(n node) {
	r.cur = n
	switch n.typ {
	case NodeStartElement:
		r.depth = r.level
		r.level++
		r.scopes = append(r.scopes, declarations(n.attr))
	case NodeEndElement:
		r.level--
		r.depth = r.level
		if len(r.scopes) > 0 {
			r.scopes = r.scopes[:len(r.scopes)-1]
		}
	default:
		r.depth = r.level
	}
}

// IsEmptyElement reports whether the current start element has no content.
// It looks one node ahead without consuming it.
func (r *Reader) IsEmptyElement() (bool, error) {
	if r.cur.typ != NodeStartElement {
		return false, nil
	}
	if r.peek == nil {
		n, err := r.fetch()
		if err != nil {
			return false, r.wrap("IsEmptyElement", err)
		}
		r.peek = &n
	}
	return r.peek.typ == NodeEndElement, nil
}

// ReadStartElement advances and requires the start tag of ns:local.
func (r *Reader) ReadStartElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	return r.EnsureStartElement(ns, local)
}

// EnsureStartElement requires the cursor to be on the start tag of ns:local.
func (r *Reader) EnsureStartElement(ns Namespace, local string) error {
	if !r.IsStartElement(ns, local) {
		return r.mismatch("ReadStartElement", "start of "+formatName(xml.Name{Space: ns.URI, Local: local}))
	}
	return nil
}

// ReadEndElement advances and requires the end tag of ns:local.
func (r *Reader) ReadEndElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	if !r.IsEndElement(ns, local) {
		return r.mismatch("ReadEndElement", "end of "+formatName(xml.Name{Space: ns.URI, Local: local}))
	}
	return nil
}

// ReadValue returns the text content of the current element. The cursor must
// be on a start tag and is left on the matching end tag. An empty element
// yields "". Whitespace is preserved. A child element is a shape error.
func (r *Reader) ReadValue() (string, error) {
	if r.cur.typ != NodeStartElement {
		return "", r.mismatch("ReadValue", "start element")
	}
	owner := r.cur.name
	var b strings.Builder
	for {
		if err := r.advance("ReadValue", true); err != nil {
			return "", err
		}
		switch r.cur.typ {
		case NodeText:
			b.WriteString(r.cur.text)
		case NodeEndElement:
			return b.String(), nil
		case NodeStartElement:
			return "", r.mismatch("ReadValue", "text content of "+formatName(owner))
		}
	}
}

// ReadElementValue reads the start tag of ns:local and returns its text content.
func (r *Reader) ReadElementValue(ns Namespace, local string) (string, error) {
	if err := r.ReadStartElement(ns, local); err != nil {
		return "", err
	}
	return r.ReadValue()
}

// Skip consumes the subtree of the current start element. Nested elements with
// the same name are consumed like any other node. Skip is a no-op on other nodes.
func (r *Reader) Skip() error {
	if r.cur.typ != NodeStartElement {
		return nil
	}
	depth := r.depth
	for {
		if err := r.advance("Skip", true); err != nil {
			return err
		}
		if r.cur.typ == NodeEndElement && r.depth == depth {
			return nil
		}
	}
}

// ReadToDescendant advances to the next start tag of ns:local inside the
// current element. It returns false, leaving the cursor on the current
// element's end tag, when there is none.
func (r *Reader) ReadToDescendant(ns Namespace, local string) (bool, error) {
	if r.cur.typ != NodeStartElement {
		return false, r.mismatch("ReadToDescendant", "start element")
	}
	depth := r.depth
	for {
		if err := r.advance("ReadToDescendant", false); err != nil {
			return false, err
		}
		if r.IsStartElement(ns, local) {
			return true, nil
		}
		if r.cur.typ == NodeEndElement && r.depth == depth {
			return false, nil
		}
	}
}

// ReadOuterXML returns the markup of the current element including its own tags.
// Namespaces declared on enclosing elements are re-declared on the returned root.
func (r *Reader) ReadOuterXML() (string, error) {
	return r.capture("ReadOuterXML", true)
}

// ReadInnerXML returns the markup of the current element's content.
func (r *Reader) ReadInnerXML() (string, error) {
	return r.capture("ReadInnerXML", false)
}

func (r *Reader) capture(op string, outer bool) (string, error) {
	if r.cur.typ != NodeStartElement {
		return "", r.mismatch(op, "start element")
	}
	var b strings.Builder
	depth := r.depth
	var open []string
	if outer {
		open = append(open, r.writeStartTag(&b, r.cur, true))
	}
	for {
		if err := r.advance(op, true); err != nil {
			return "", err
		}
		switch r.cur.typ {
		case NodeText:
			_ = xml.EscapeText(&b, []byte(r.cur.text))
		case NodeStartElement:
			open = append(open, r.writeStartTag(&b, r.cur, false))
		case NodeEndElement:
			if r.depth == depth && !outer {
				return b.String(), nil
			}
			name := open[len(open)-1]
			open = open[:len(open)-1]
			b.WriteString("</" + name + ">")
			if r.depth == depth {
				return b.String(), nil
			}
		}
	}
}

// writeStartTag writes n's start tag and returns its qualified name. The
// element's own declarations are already in scope.
func (r *Reader) writeStartTag(b *strings.Builder, n node, root bool) string {
	name := r.qualify(n.name, false)
	b.WriteString("<" + name)
	own := declarations(n.attr)
	if root {
		inherited := r.inScope()
		for _, p := range slices.Sorted(maps.Keys(inherited)) {
			if _, ok := own[p]; ok {
				continue
			}
			writeDeclaration(b, p, inherited[p])
		}
	}
	for _, a := range n.attr {
		b.WriteString(" " + r.qualify(a.Name, true) + `="`)
		_ = xml.EscapeText(b, []byte(a.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return name
}

func writeDeclaration(b *strings.Builder, prefix, uri string) {
	if prefix == "" {
		b.WriteString(` xmlns="`)
	} else {
		b.WriteString(` xmlns:` + prefix + `="`)
	}
	_ = xml.EscapeText(b, []byte(uri))
	b.WriteString(`"`)
}

// qualify maps a resolved name back to prefixed form using the open scopes.
func (r *Reader) qualify(n xml.Name, attr bool) string {
	switch {
	case n.Space == "":
		return n.Local
	case n.Space == "xmlns":
		return "xmlns:" + n.Local
	case n.Space == xmlURI:
		return "xml:" + n.Local
	}
	if p, ok := r.prefixFor(n.Space, attr); ok {
		if p == "" {
			return n.Local
		}
		return p + ":" + n.Local
	}
	// The decoder leaves undeclared prefixes unresolved.
	return n.Space + ":" + n.Local
}

func (r *Reader) prefixFor(uri string, attr bool) (string, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		for p, u := range r.scopes[i] {
			if u != uri || (attr && p == "") {
				continue
			}
			if r.lookup(p) == uri {
				return p, true
			}
		}
	}
	return "", false
}

func (r *Reader) lookup(prefix string) string {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if u, ok := r.scopes[i][prefix]; ok {
			return u
		}
	}
	return ""
}

// inScope flattens the declarations of all open elements, inner ones winning.
func (r *Reader) inScope() map[string]string {
	m := make(map[string]string)
	for _, frame := range r.scopes {
		for p, u := range frame {
			m[p] = u
		}
	}
	return m
}

func declarations(attrs []xml.Attr) map[string]string {
	var m map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[prefix] = a.Value
	}
	return m
}

func (r *Reader) mismatch(op, expected string) error {
	return &SyntaxError{
		Op:       op,
		Expected: expected,
		Actual:   r.describe(),
		Line:     r.line(),
		Err:      ErrUnexpectedElement,
	}
}

func (r *Reader) wrap(op string, err error) error {
	var xse *xml.SyntaxError
	if errors.Is(err, io.EOF) || (errors.As(err, &xse) && xse.Msg == "unexpected EOF") {
		return &SyntaxError{Op: op, Expected: "more input", Actual: r.describe(), Line: r.line(), Err: ErrUnexpectedEOF}
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return err
	}
	return &SyntaxError{Op: op, Line: r.line(), Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}

func (r *Reader) describe() string {
	switch r.cur.typ {
	case NodeStartElement:
		return "start of " + formatName(r.cur.name)
	case NodeEndElement:
		return "end of " + formatName(r.cur.name)
	case NodeText:
		return "text"
	default:
		return "beginning of document"
	}
}

func (r *Reader) line() int {
	line, _ := r.dec.InputPos()
	return line
}

func isWhitespace(s string) bool {
	return strings.Trim(s, " \t\r\n") == ""
}

// ReadChildren calls fn with the cursor on each child start tag of the
// current element; fn must leave the cursor on that child's end tag.
// ReadChildren returns with the cursor on the current element's end tag.
func (r *Reader) ReadChildren(fn func() error) error {
	if r.cur.typ != NodeStartElement {
		return r.mismatch("ReadChildren", "start element")
	}
	depth := r.depth
	for {
		if err := r.advance("ReadChildren", false); err != nil {
			return err
		}
		switch {
		case r.cur.typ == NodeStartElement:
			if err := fn(); err != nil {
				return err
			}
			if r.cur.typ == NodeStartElement {
				// fn left the child unconsumed.
				if err := r.Skip(); err != nil {
					return err
				}
			}
		case r.cur.typ == NodeEndElement && r.depth == depth:
			return nil
		}
	}
}
