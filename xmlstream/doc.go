// Package xmlstream implements the streaming XML reader and writer used by the
// property engine.
//
// The wire format is namespace-qualified XML in the style of Exchange Web
// Services. Elements are addressed by a Namespace (prefix plus URI) and a local
// name; the reader matches on the namespace URI, the writer emits the prefix.
//
// # Reader
//
// Reader is a forward-only pull cursor over an xml.Decoder. It never builds a
// tree: every operation consumes one logical node at a time.
//
//	r := xmlstream.NewReader(body)
//	if err := r.ReadStartElement(xmlstream.Types, "Contact"); err != nil {
//		return err
//	}
//	name, err := r.ReadElementValue(xmlstream.Types, "DisplayName")
//
// After ReadValue, Skip, ReadOuterXML and ReadInnerXML the cursor rests on the
// end tag of the element that was consumed.
//
// # Writer
//
// Writer emits markup to a buffered sink. All typed values pass through
// FormatValue, so attributes and element values share one conversion policy:
//
//	w := xmlstream.NewWriter(out)
//	w.WriteStartElement(xmlstream.Types.Name("Contact"))
//	if err := w.WriteElementValue(xmlstream.Types.Name("GivenName"), "Ada"); err != nil {
//		return err
//	}
//	w.WriteEndElement()
//	return w.Flush()
package xmlstream
