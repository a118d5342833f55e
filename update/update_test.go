package update

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// flagSet writes one set operation per flag instead of replacing the whole value.
type flagSet struct {
	propdef.Tracked
	flags []string
}

func (f *flagSet) ReadXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		s, err := r.ReadValue()
		f.flags = append(f.flags, s)
		return err
	})
}

func (f *flagSet) WriteXML(w *xmlstream.Writer) error {
	for _, s := range f.flags {
		if err := w.WriteElementValue(xmlstream.Types.Name("Flag"), s); err != nil {
			return err
		}
	}
	return nil
}

func (f *flagSet) WriteSetUpdate(w *xmlstream.Writer, s *propdef.Schema, def *propdef.Definition) (bool, error) {
	for _, flag := range f.flags {
		err := WriteSetField(w, s,
			func() error {
				w.WriteStartElement(xmlstream.Types.Name("IndexedFieldURI"))
				if err := w.WriteAttribute("FieldURI", def.FieldURI); err != nil {
					return err
				}
				if err := w.WriteAttribute("FieldIndex", flag); err != nil {
					return err
				}
				w.WriteEndElement()
				return nil
			},
			func() error { return w.WriteElementValue(def.Name, flag) })
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

func (f *flagSet) WriteDeleteUpdate(*xmlstream.Writer, *propdef.Schema, *propdef.Definition) (bool, error) {
	return false, nil
}

var (
	itemID   = propdef.NewIdentity("ItemId", "item:ItemId", propdef.ReadOnly, propdef.StringValue)
	subject  = propdef.NewString("Subject", "item:Subject", propdef.Writable)
	body     = propdef.NewString("Body", "item:Body", propdef.Writable)
	isRead   = propdef.NewBool("IsRead", "message:IsRead", propdef.Updatable)
	size     = propdef.NewInt("Size", "item:Size", propdef.ReadOnly)
	flags    = propdef.NewComposite("Flags", "item:Flags", propdef.Writable, func() *flagSet { return &flagSet{} })
	messages = propdef.NewSchema("Message", xmlstream.Types.Name("Message"), propdef.ItemChanges,
		itemID, subject, body, isRead, size, flags)
	folderID = propdef.NewIdentity("FolderId", "folder:FolderId", propdef.ReadOnly, propdef.StringValue)
	name     = propdef.NewString("DisplayName", "folder:DisplayName", propdef.Writable)
	folders  = propdef.NewSchema("Folder", xmlstream.Types.Name("Folder"), propdef.FolderChanges, folderID, name)
)

type owner struct {
	schema *propdef.Schema
	isNew  bool
}

func (o *owner) Schema() *propdef.Schema           { return o.schema }
func (o *owner) RequestedVersion() propdef.Version { return propdef.Latest }
func (o *owner) IsNew() bool                       { return o.isNew }
func (o *owner) IsAttachment() bool                { return false }

const typesNS = `xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"`

func loaded(t *testing.T, s *propdef.Schema, content string) *propbag.Bag {
	t.Helper()
	b := propbag.New(&owner{schema: s})
	doc := `<t:` + s.Element.Local + ` ` + typesNS + `>` + content + `</t:` + s.Element.Local + `>`
	r := xmlstream.NewReader(strings.NewReader(doc))
	if err := r.Read(); err != nil {
		t.Fatal(err)
	}
	if err := b.Load(r, propbag.LoadOptions{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func render(t *testing.T, fn func(w *xmlstream.Writer) error) string {
	t.Helper()
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	if err := fn(w); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestWriteChangeOrder(t *testing.T) {
	b := loaded(t, messages, `<t:ItemId>AAMk</t:ItemId><t:Subject>old</t:Subject><t:Body>text</t:Body><t:IsRead>false</t:IsRead>`)
	steps := []struct {
		def *propdef.Definition
		v   any
	}{
		{isRead, true},   // modified
		{body, nil},      // deleted
		{subject, "new"}, // modified
		{flags, &flagSet{flags: []string{"a"}}},
	}
	for _, s := range steps {
		if err := b.Set(s.def, s.v); err != nil {
			t.Fatalf("Set(%s): %v", s.def, err)
		}
	}

	got := render(t, func(w *xmlstream.Writer) error { return WriteChange(w, b) })
	want := `<t:ItemChange ` + typesNS + `><t:ItemId>AAMk</t:ItemId><t:Updates>` +
		// added
		`<t:SetItemField><t:IndexedFieldURI FieldURI="item:Flags" FieldIndex="a"/><t:Message><t:Flags>a</t:Flags></t:Message></t:SetItemField>` +
		// modified, in order
		`<t:SetItemField><t:FieldURI FieldURI="message:IsRead"/><t:Message><t:IsRead>true</t:IsRead></t:Message></t:SetItemField>` +
		`<t:SetItemField><t:FieldURI FieldURI="item:Subject"/><t:Message><t:Subject>new</t:Subject></t:Message></t:SetItemField>` +
		// deleted
		`<t:DeleteItemField><t:FieldURI FieldURI="item:Body"/></t:DeleteItemField>` +
		`</t:Updates></t:ItemChange>`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if n := Pending(b); n != 4 {
		t.Errorf("Pending = %d, want 4", n)
	}
}

func TestWriteChangeSkipsMissingCapability(t *testing.T) {
	b := loaded(t, messages, `<t:ItemId>AAMk</t:ItemId><t:Size>10</t:Size><t:IsRead>true</t:IsRead>`)
	// Change sets can only gain such keys through loading or a new entity.
	o := b.Owner().(*owner)
	o.isNew = true
	if err := b.Set(size, 20); !errors.Is(err, propbag.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := b.Set(isRead, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(subject, "s"); err != nil {
		t.Fatal(err)
	}

	got := render(t, func(w *xmlstream.Writer) error { return WriteChange(w, b) })
	want := `<t:ItemChange ` + typesNS + `><t:ItemId>AAMk</t:ItemId><t:Updates>` +
		`<t:SetItemField><t:FieldURI FieldURI="item:Subject"/><t:Message><t:Subject>s</t:Subject></t:Message></t:SetItemField>` +
		`</t:Updates></t:ItemChange>`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if n := Pending(b); n != 1 {
		t.Errorf("Pending = %d, want 1", n)
	}
}

func TestWriteChangeDeleteThenSet(t *testing.T) {
	b := loaded(t, messages, `<t:ItemId>AAMk</t:ItemId><t:Subject>old</t:Subject>`)
	_ = b.Set(subject, nil)
	_ = b.Set(subject, "again")
	got := render(t, func(w *xmlstream.Writer) error { return WriteChange(w, b) })
	if strings.Contains(got, "DeleteItemField") {
		t.Errorf("delete-then-set wrote a delete: %s", got)
	}
	if c := strings.Count(got, "SetItemField>"); c != 2 {
		t.Errorf("got %d SetItemField tags, want one element: %s", c, got)
	}
}

func TestWriteChangeWithoutIdentity(t *testing.T) {
	b := propbag.New(&owner{schema: messages, isNew: true})
	_ = b.Set(subject, "s")
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	err := WriteChange(w, b)
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("failed WriteChange left markup: %s", buf.String())
	}
}

func TestWriteChangeNoChanges(t *testing.T) {
	b := loaded(t, folders, `<t:FolderId>F1</t:FolderId><t:DisplayName>Inbox</t:DisplayName>`)
	got := render(t, func(w *xmlstream.Writer) error { return WriteChange(w, b) })
	want := `<t:FolderChange ` + typesNS + `><t:FolderId>F1</t:FolderId><t:Updates/></t:FolderChange>`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestWriteChanges(t *testing.T) {
	a := loaded(t, folders, `<t:FolderId>F1</t:FolderId>`)
	b := loaded(t, folders, `<t:FolderId>F2</t:FolderId>`)
	_ = a.Set(name, "One")
	_ = b.Set(name, nil)

	got := render(t, func(w *xmlstream.Writer) error { return WriteChanges(w, a, b) })
	want := `<m:FolderChanges xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">` +
		`<t:FolderChange ` + typesNS + `><t:FolderId>F1</t:FolderId><t:Updates>` +
		`<t:SetFolderField><t:FieldURI FieldURI="folder:DisplayName"/><t:Folder><t:DisplayName>One</t:DisplayName></t:Folder></t:SetFolderField>` +
		`</t:Updates></t:FolderChange>` +
		`<t:FolderChange ` + typesNS + `><t:FolderId>F2</t:FolderId><t:Updates>` +
		`<t:DeleteFolderField><t:FieldURI FieldURI="folder:DisplayName"/></t:DeleteFolderField>` +
		`</t:Updates></t:FolderChange></m:FolderChanges>`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	if out := render(t, func(w *xmlstream.Writer) error { return WriteChanges(w) }); out != "" {
		t.Errorf("no bags wrote %q", out)
	}
}
