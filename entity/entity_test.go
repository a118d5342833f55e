package entity_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

var (
	noteID    = propdef.NewIdentity("NoteId", "note:NoteId", propdef.ReadOnly, propdef.StringValue)
	noteTitle = propdef.NewString("Title", "note:Title", propdef.Writable)
	noteSize  = propdef.NewInt("Size", "note:Size", propdef.ReadOnly)

	noteSchema = propdef.NewSchema("Note", xmlstream.Types.Name("Note"), propdef.ItemChanges, noteID,
		noteID, noteTitle, noteSize)
)

const noteDoc = `<t:Note xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">` +
	`<t:NoteId>N1</t:NoteId><t:Title>first</t:Title><t:Size>10</t:Size></t:Note>`

func loadNote(t *testing.T, opts ...entity.Option) *entity.Entity {
	t.Helper()
	r := xmlstream.NewReader(strings.NewReader(noteDoc))
	if err := r.Read(); err != nil {
		t.Fatal(err)
	}
	e, err := entity.NewRegistry(noteSchema).Load(r, propdef.Latest, propbag.LoadOptions{}, opts...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func write(t *testing.T, fn func(*xmlstream.Writer) error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	err := fn(w)
	if ferr := w.Flush(); ferr != nil {
		t.Fatal(ferr)
	}
	return buf.String(), err
}

func TestLifecycle(t *testing.T) {
	e := entity.New(noteSchema, propdef.Latest)
	if !e.IsNew() || e.ID() != nil {
		t.Fatalf("new entity: new=%v id=%v", e.IsNew(), e.ID())
	}
	if err := e.Set(noteTitle, "draft"); err != nil {
		t.Fatal(err)
	}
	got, err := write(t, e.WriteCreate)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, `><t:Title>draft</t:Title></t:Note>`) {
		t.Errorf("create = %s", got)
	}

	e.Saved("N9")
	if e.IsNew() || e.IsDirty() || e.ID() != "N9" {
		t.Fatalf("after Saved: new=%v dirty=%v id=%v", e.IsNew(), e.IsDirty(), e.ID())
	}
	if err := e.Set(noteTitle, "final"); err != nil {
		t.Fatal(err)
	}
	got, err = write(t, e.WriteUpdate)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`<t:NoteId>N9</t:NoteId>`, `<t:FieldURI FieldURI="note:Title"/>`, `<t:Title>final</t:Title>`} {
		if !strings.Contains(got, want) {
			t.Errorf("update missing %s: %s", want, got)
		}
	}
}

func TestWriteInWrongState(t *testing.T) {
	e := entity.New(noteSchema, propdef.Latest)
	if _, err := write(t, e.WriteUpdate); !errors.Is(err, entity.ErrUnsaved) {
		t.Errorf("WriteUpdate: expected ErrUnsaved, got %v", err)
	}
	e = loadNote(t)
	if _, err := write(t, e.WriteCreate); !errors.Is(err, entity.ErrSaved) {
		t.Errorf("WriteCreate: expected ErrSaved, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	e := loadNote(t)
	if e.IsNew() || e.IsDirty() {
		t.Errorf("loaded entity: new=%v dirty=%v", e.IsNew(), e.IsDirty())
	}
	size, err := propbag.Value[int](e.Bag(), noteSize)
	if err != nil || size != 10 {
		t.Errorf("Size = %d, %v", size, err)
	}
	if err := e.Set(noteSize, 11); !errors.Is(err, propbag.ErrNotUpdatable) {
		t.Errorf("Set Size: expected ErrNotUpdatable, got %v", err)
	}
}

func TestLoadFailureKeepsEntityNew(t *testing.T) {
	r := xmlstream.NewReader(strings.NewReader(`<t:Note xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">` +
		`<t:Size>ten</t:Size></t:Note>`))
	_ = r.Read()
	e := entity.New(noteSchema, propdef.Latest)
	err := e.Load(r, propbag.LoadOptions{})
	if !errors.Is(err, propdef.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "load Note: ") {
		t.Errorf("error = %q", err)
	}
	if !e.IsNew() {
		t.Error("failed load marked the entity as saved")
	}
}

func TestAttachment(t *testing.T) {
	e := loadNote(t, entity.AsAttachment())
	if !e.IsAttachment() {
		t.Fatal("AsAttachment not applied")
	}
	if err := e.Set(noteTitle, "x"); !errors.Is(err, propbag.ErrAttachmentReadOnly) {
		t.Errorf("expected ErrAttachmentReadOnly, got %v", err)
	}
	if !errors.Is(propbag.ErrAttachmentReadOnly, propbag.ErrCapability) {
		t.Error("ErrAttachmentReadOnly is not a capability error")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	loadNote(t, entity.WithLogger(logger))
	for _, want := range []string{`"msg":"loading entity"`, `"schema":"Note"`, `"properties":3`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %s:\n%s", want, buf.String())
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := entity.NewRegistry(noteSchema)
	var built int
	reg.RegisterFactory(xmlstream.Types.Name("Memo"), func(v propdef.Version, opts ...entity.Option) *entity.Entity {
		built++
		return entity.New(noteSchema, v, opts...)
	})
	if diff := cmp.Diff([]string{"Memo", "Note"}, reg.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}

	r := xmlstream.NewReader(strings.NewReader(`<t:Memo xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"/>`))
	_ = r.Read()
	// The factory's schema expects t:Note, so loading the memo fails after dispatch.
	if _, err := reg.Load(r, propdef.Latest, propbag.LoadOptions{}); !errors.Is(err, xmlstream.ErrUnexpectedElement) {
		t.Errorf("expected ErrUnexpectedElement, got %v", err)
	}
	if built != 1 {
		t.Errorf("factory called %d times", built)
	}

	r = xmlstream.NewReader(strings.NewReader(`<Note/>`))
	_ = r.Read()
	if _, err := reg.Load(r, propdef.Latest, propbag.LoadOptions{}); !errors.Is(err, entity.ErrUnknownEntity) {
		t.Errorf("unqualified element: expected ErrUnknownEntity, got %v", err)
	}
}
