package propdef

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/smnsjas/go-ewscore/xmlstream"
)

type color int

const (
	colorRed color = iota
	colorDarkGreen
)

func (c color) EnumName() string {
	if c == colorDarkGreen {
		return "DarkGreen"
	}
	return "Red"
}

func (c color) WireToken() (string, bool) {
	if c == colorDarkGreen {
		return "dark-green", true
	}
	return "", false
}

// tagList is a minimal composite used to exercise the complex codec.
type tagList struct {
	Tracked
	tags []string
}

func (l *tagList) ReadXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		s, err := r.ReadValue()
		if err != nil {
			return err
		}
		l.tags = append(l.tags, s)
		return nil
	})
}

func (l *tagList) WriteXML(w *xmlstream.Writer) error {
	for _, s := range l.tags {
		if err := w.WriteElementValue(xmlstream.Types.Name("String"), s); err != nil {
			return err
		}
	}
	return nil
}

func writeDef(t *testing.T, def *Definition, v any) string {
	t.Helper()
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	if err := def.Codec.WriteValue(w, def, v); err != nil {
		t.Fatalf("WriteValue(%s): %v", def, err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func readDef(t *testing.T, def *Definition, doc string) any {
	t.Helper()
	r := xmlstream.NewReader(strings.NewReader(doc))
	if err := r.Read(); err != nil {
		t.Fatal(err)
	}
	v, err := def.Codec.ReadValue(r, def)
	if err != nil {
		t.Fatalf("ReadValue(%s): %v", def, err)
	}
	if !r.IsEndElement(def.Name.NS, def.Name.Local) {
		t.Errorf("cursor on %s %v, want end of %s", r.NodeType(), r.Name(), def.Name)
	}
	return v
}

func TestScalarRoundTrip(t *testing.T) {
	received := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	id := uuid.MustParse("0d8a7a4c-5f4e-4a5b-9c1d-3e2f1a0b9c8d")
	tests := []struct {
		name  string
		def   *Definition
		value any
		wire  string
	}{
		{"string", NewString("Subject", "item:Subject", Writable), "Hi & bye", "Hi &amp; bye"},
		{"empty string", NewString("Subject", "item:Subject", Writable), "", ""},
		{"bool", NewBool("IsRead", "message:IsRead", Writable), true, "true"},
		{"int", NewInt("Size", "item:Size", ReadOnly), 4096, "4096"},
		{"double", NewDouble("Percent", "task:PercentComplete", Writable), 12.5, "12.5"},
		{"datetime", NewDateTime("DateTimeReceived", "item:DateTimeReceived", ReadOnly), received, "2024-03-01T09:30:00Z"},
		{"binary", NewBinary("InstanceKey", "item:InstanceKey", ReadOnly), []byte("key"), "a2V5"},
		{"guid", NewGUID("Guid", "item:Guid", ReadOnly), id, id.String()},
		{"enum token", NewEnum("Color", "item:Color", Writable, colorRed, colorDarkGreen), colorDarkGreen, "dark-green"},
		{"enum name", NewEnum("Color", "item:Color", Writable, colorRed, colorDarkGreen), colorRed, "Red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writeDef(t, tt.def, tt.value)
			want := `<t:` + tt.def.Name.Local + ` xmlns:t="` + xmlstream.Types.URI + `">` + tt.wire + `</t:` + tt.def.Name.Local + `>`
			if got != want {
				t.Fatalf("wire =\n%s\nwant\n%s", got, want)
			}
			back := readDef(t, tt.def, got)
			if diff := cmp.Diff(tt.value, back); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScalarWrongType(t *testing.T) {
	def := NewInt("Size", "item:Size", ReadOnly)
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	err := def.Codec.WriteValue(w, def, "4096")
	if !errors.Is(err, ErrValueType) {
		t.Fatalf("expected ErrValueType, got %v", err)
	}
	_ = w.Flush()
	if buf.Len() != 0 {
		t.Errorf("wrote %q on type error", buf.String())
	}
}

func TestScalarParseError(t *testing.T) {
	def := NewBool("IsRead", "message:IsRead", Writable)
	r := xmlstream.NewReader(strings.NewReader(`<t:IsRead xmlns:t="` + xmlstream.Types.URI + `">maybe</t:IsRead>`))
	if err := r.Read(); err != nil {
		t.Fatal(err)
	}
	if _, err := def.Codec.ReadValue(r, def); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestDefinitionParse(t *testing.T) {
	enum := NewEnum("Color", "item:Color", Writable, colorRed, colorDarkGreen)
	v, err := enum.Parse("DarkGreen")
	if err != nil || v != colorDarkGreen {
		t.Fatalf("Parse(DarkGreen) = %v, %v", v, err)
	}
	tags := NewComposite("Tags", "item:Tags", Writable, func() *tagList { return &tagList{} })
	if _, err := tags.Parse("x"); !errors.Is(err, ErrParse) {
		t.Errorf("composite Parse: expected ErrParse, got %v", err)
	}
}

func TestComplexCodec(t *testing.T) {
	def := NewComposite("Tags", "item:Tags", Writable, func() *tagList { return &tagList{} })
	if !def.IsComposite() || !def.Nullable {
		t.Fatalf("composite definition: kind %s nullable %v", def.Kind, def.Nullable)
	}
	if _, ok := def.Codec.(Instantiator); !ok {
		t.Fatal("complex codec does not implement Instantiator")
	}

	got := writeDef(t, def, &tagList{tags: []string{"a", "b"}})
	want := `<t:Tags xmlns:t="` + xmlstream.Types.URI + `"><t:String>a</t:String><t:String>b</t:String></t:Tags>`
	if got != want {
		t.Fatalf("wire =\n%s\nwant\n%s", got, want)
	}
	back := readDef(t, def, got).(*tagList)
	if diff := cmp.Diff([]string{"a", "b"}, back.tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	empty := readDef(t, def, `<t:Tags xmlns:t="`+xmlstream.Types.URI+`"/>`).(*tagList)
	if len(empty.tags) != 0 {
		t.Errorf("empty element read %v", empty.tags)
	}
}

func TestTrackedNotifiesCurrentOwner(t *testing.T) {
	var first, second int
	var l tagList
	l.Changed()
	l.Attach(func() { first++ })
	l.Changed()
	l.Attach(func() { second++ })
	l.Changed()
	l.Attach(nil)
	l.Changed()
	if first != 1 || second != 1 {
		t.Errorf("notifications first=%d second=%d, want 1 and 1", first, second)
	}
}

func TestWriteFieldURI(t *testing.T) {
	def := NewString("Subject", "item:Subject", Writable)
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	if err := def.WriteFieldURI(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := `<t:FieldURI xmlns:t="` + xmlstream.Types.URI + `" FieldURI="item:Subject"/>`
	if buf.String() != want {
		t.Errorf("got %s, want %s", buf.String(), want)
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"Exchange2007_SP1", Exchange2007SP1},
		{"exchange2010sp2", Exchange2010SP2},
		{"Exchange2013_SP1", Exchange2013SP1},
		{"Exchange2016", Exchange2016},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseVersion("Exchange2003"); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("expected ErrUnknownVersion, got %v", err)
	}
	if tok := xmlstream.EnumToken(Exchange2010SP1); tok != "Exchange2010_SP1" {
		t.Errorf("wire token = %q", tok)
	}
	if Version(42).String() != "Version(42)" {
		t.Errorf("invalid version String = %q", Version(42).String())
	}

	def := NewString("Alias", "contacts:Alias", ReadOnly).Since(Exchange2010SP2)
	if def.SupportedIn(Exchange2010SP1) || !def.SupportedIn(Exchange2013) {
		t.Error("SupportedIn does not respect the minimum version")
	}
}

func TestFlagsString(t *testing.T) {
	if got := (CanSet | CanDelete | NotInSummary).String(); got != "CanSet|CanDelete|NotInSummary" {
		t.Errorf("String = %q", got)
	}
	if Flags(0).String() != "None" {
		t.Errorf("zero flags = %q", Flags(0).String())
	}
	if !Writable.Has(CanSet|CanUpdate) || ReadOnly.Has(CanUpdate) {
		t.Error("Has reports wrong membership")
	}
}

func TestSchema(t *testing.T) {
	id := NewIdentity("ItemId", "item:ItemId", ReadOnly, StringValue)
	subject := NewString("Subject", "item:Subject", Writable)
	body := NewString("Body", "item:Body", Writable|NotInSummary)
	mime := NewBinary("MimeContent", "item:MimeContent", Writable|MustBeExplicitlyLoaded)
	item := NewSchema("Item", xmlstream.Types.Name("Item"), ItemChanges, id, subject, body, mime)

	if got := item.Properties(); len(got) != 4 || got[0] != id {
		t.Fatalf("Properties = %v", got)
	}
	if def, ok := item.Lookup(xml.Name{Space: xmlstream.Types.URI, Local: "Subject"}); !ok || def != subject {
		t.Errorf("Lookup(Subject) = %v, %v", def, ok)
	}
	if _, ok := item.Lookup(xml.Name{Space: "urn:other", Local: "Subject"}); ok {
		t.Error("Lookup matched a foreign namespace")
	}

	names := func(defs []*Definition) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.String())
		}
		return out
	}
	if diff := cmp.Diff([]string{"ItemId", "Subject", "Body"}, names(item.FirstClass(false))); diff != "" {
		t.Errorf("FirstClass(false) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ItemId", "Subject"}, names(item.FirstClass(true))); diff != "" {
		t.Errorf("FirstClass(true) (-want +got):\n%s", diff)
	}

	isRead := NewBool("IsRead", "message:IsRead", Writable)
	message := item.Extend("Message", xmlstream.Types.Name("Message"), isRead)
	if diff := cmp.Diff([]string{"ItemId", "Subject", "Body", "MimeContent", "IsRead"}, names(message.Properties())); diff != "" {
		t.Errorf("Extend (-want +got):\n%s", diff)
	}
	if item.Contains(isRead) {
		t.Error("base schema gained a derived property")
	}
	if message.ID != id || message.Changes != ItemChanges {
		t.Error("Extend did not carry identity and change names")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate property did not panic")
		}
	}()
	NewSchema("Bad", xmlstream.Types.Name("Bad"), ItemChanges, nil, subject, subject)
}
