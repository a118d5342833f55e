package schema

import (
	"fmt"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// MessageBody is the body of an item: text in HTML or plain format.
type MessageBody struct {
	propdef.Tracked
	bodyType BodyType
	text     string
}

// NewMessageBody returns a body of the given type and text.
func NewMessageBody(t BodyType, text string) *MessageBody {
	return &MessageBody{bodyType: t, text: text}
}

// Type returns the body format.
func (b *MessageBody) Type() BodyType { return b.bodyType }

// Text returns the body text.
func (b *MessageBody) Text() string { return b.text }

// SetType changes the body format.
func (b *MessageBody) SetType(t BodyType) {
	if b.bodyType != t {
		b.bodyType = t
		b.Changed()
	}
}

// SetText changes the body text.
func (b *MessageBody) SetText(s string) {
	if b.text != s {
		b.text = s
		b.Changed()
	}
}

// String returns the body text.
func (b *MessageBody) String() string { return b.text }

// ReadXML implements propdef.ComplexValue.
func (b *MessageBody) ReadXML(r *xmlstream.Reader) error {
	if s, ok := r.Attr("BodyType"); ok {
		t, ok := parseBodyType(s)
		if !ok {
			return fmt.Errorf("%w: BodyType %q", propdef.ErrParse, s)
		}
		b.bodyType = t
	}
	text, err := r.ReadValue()
	if err != nil {
		return err
	}
	b.text = text
	return nil
}

// WriteXML implements propdef.ComplexValue.
func (b *MessageBody) WriteXML(w *xmlstream.Writer) error {
	if err := w.WriteAttribute("BodyType", b.bodyType); err != nil {
		return err
	}
	w.WriteString(b.text)
	return nil
}
