package main

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/pflag"

	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/schema"
	"github.com/smnsjas/go-ewscore/update"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// edits are the property edits shared by update and create.
type edits struct {
	set      []string
	delete   []string
	email    []string
	envelope bool
	header   string
}

func (ed *edits) addFlags(fs *pflag.FlagSet, deletes bool) {
	fs.StringArrayVar(&ed.set, "set", nil, "assign a property, NAME=VALUE; lists take comma-separated items")
	if deletes {
		fs.StringArrayVar(&ed.delete, "delete", nil, "delete a property by NAME")
	}
	fs.StringArrayVar(&ed.email, "email", nil, "set a contact address, KEY=ADDRESS; an empty address removes it")
	fs.BoolVar(&ed.envelope, "envelope", false, "wrap the markup in a request envelope")
	fs.StringVar(&ed.header, "header", "", "XML file whose elements are copied into the envelope header; implies --envelope")
}

// apply runs the edits against ent in flag order: sets, deletes, addresses.
func (ed *edits) apply(ent *entity.Entity) error {
	s := ent.Schema()
	for _, kv := range ed.set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: --set %q is not NAME=VALUE", errUsage, kv)
		}
		def, err := lookup(s, name)
		if err != nil {
			return err
		}
		v, err := parseValue(def, value)
		if err != nil {
			return err
		}
		if err := ent.Set(def, v); err != nil {
			return err
		}
	}
	for _, name := range ed.delete {
		def, err := lookup(s, name)
		if err != nil {
			return err
		}
		if err := ent.Set(def, nil); err != nil {
			return err
		}
	}
	if len(ed.email) == 0 {
		return nil
	}
	if !s.Contains(schema.EmailAddresses) {
		return fmt.Errorf("%w: %s has no email addresses", errUsage, s.Name)
	}
	dict, err := propbag.Value[*schema.EmailAddressDictionary](ent.Bag(), schema.EmailAddresses)
	if err != nil {
		return err
	}
	if dict == nil {
		dict = schema.NewEmailAddressDictionary()
		if err := ent.Set(schema.EmailAddresses, dict); err != nil {
			return err
		}
	}
	for _, kv := range ed.email {
		key, addr, _ := strings.Cut(kv, "=")
		k, ok := schema.ParseEmailAddressKey(key)
		if !ok {
			return fmt.Errorf("%w: unknown address key %q", errUsage, key)
		}
		if addr == "" {
			dict.Remove(k)
			continue
		}
		dict.Set(k, addr)
	}
	return nil
}

func lookup(s *propdef.Schema, name string) (*propdef.Definition, error) {
	def, ok := s.LookupLocal(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", errUsage, s.Name, name)
	}
	return def, nil
}

// parseValue converts the command-line text of a property value.
func parseValue(def *propdef.Definition, s string) (any, error) {
	inst, ok := def.Codec.(propdef.Instantiator)
	if !ok {
		return def.Parse(s)
	}
	switch v := inst.NewValue().(type) {
	case *schema.StringList:
		v.Add(splitList(s)...)
		return v, nil
	case *schema.Recipients:
		for _, addr := range splitList(s) {
			v.Add("", addr)
		}
		return v, nil
	case *schema.MessageBody:
		return schema.NewMessageBody(schema.BodyText, s), nil
	}
	return nil, fmt.Errorf("%w: %s cannot be set from text", propdef.ErrParse, def)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// readHeader parses the --header file, if any.
func (ed *edits) readHeader() (*etree.Document, error) {
	if ed.header == "" {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(ed.header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return doc, nil
}

func (e *env) update(args []string) error {
	fs := e.newFlagSet("update")
	var ed edits
	ed.addFlags(fs, true)
	showDiff := fs.Bool("diff", false, "print a diff of the properties before and after the edits")
	if err := fs.Parse(args); err != nil {
		return err
	}
	header, err := ed.readHeader()
	if err != nil {
		return err
	}

	src, done, err := e.open(fs.Args())
	if err != nil {
		return err
	}
	defer done()
	entities, err := e.readEntities(src)
	if err != nil {
		return err
	}
	if len(entities) != 1 {
		return fmt.Errorf("%w: update needs exactly one entity, input has %d", errUsage, len(entities))
	}
	ent := entities[0]

	before := e.projection(ent, false)
	if err := ed.apply(ent); err != nil {
		return err
	}
	if *showDiff {
		e.writeDiff(e.stdout, before, e.projection(ent, false))
	}
	e.logger.Debug("writing update", "schema", ent.Schema().Name, "operations", update.Pending(ent.Bag()))

	if !ed.envelope && header == nil {
		return e.writeMarkup(ent.WriteUpdate)
	}
	op := "UpdateItem"
	if ent.Schema().Changes == propdef.FolderChanges {
		op = "UpdateFolder"
	}
	return e.writeMarkup(func(w *xmlstream.Writer) error {
		return e.writeEnvelope(w, header, func() error {
			w.WriteStartElement(xmlstream.Messages.Name(op))
			if err := w.WriteAttribute("ConflictResolution", "AutoResolve"); err != nil {
				return err
			}
			if err := update.WriteChanges(w, ent.Bag()); err != nil {
				return err
			}
			w.WriteEndElement()
			return nil
		})
	})
}

func (e *env) create(args []string) error {
	fs := e.newFlagSet("create")
	var ed edits
	ed.addFlags(fs, false)
	typ := fs.StringP("type", "t", "Message", "entity type: "+strings.Join(e.registry.Names(), ", "))
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: create takes no input file", errUsage)
	}
	header, err := ed.readHeader()
	if err != nil {
		return err
	}
	s, ok := schema.Lookup(*typ)
	if !ok {
		return fmt.Errorf("%w: unknown type %q", errUsage, *typ)
	}

	ent := entity.New(s, e.cfg.Version, entity.WithLogger(e.logger))
	if err := ed.apply(ent); err != nil {
		return err
	}
	if !ed.envelope && header == nil {
		return e.writeMarkup(ent.WriteCreate)
	}
	op, container := "CreateItem", "Items"
	if s.Changes == propdef.FolderChanges {
		op, container = "CreateFolder", "Folders"
	}
	return e.writeMarkup(func(w *xmlstream.Writer) error {
		return e.writeEnvelope(w, header, func() error {
			w.WriteStartElement(xmlstream.Messages.Name(op))
			w.WriteStartElement(xmlstream.Messages.Name(container))
			if err := ent.WriteCreate(w); err != nil {
				return err
			}
			w.WriteEndElement()
			w.WriteEndElement()
			return nil
		})
	})
}

// writeEnvelope writes a request envelope: the version header, the
// elements of header, and body inside the envelope body.
func (e *env) writeEnvelope(w *xmlstream.Writer, header *etree.Document, body func() error) error {
	w.WriteStartElement(xmlstream.Soap.Name("Envelope"))
	if err := w.WriteNamespace(xmlstream.Types); err != nil {
		return err
	}
	if err := w.WriteNamespace(xmlstream.Messages); err != nil {
		return err
	}
	w.WriteStartElement(xmlstream.Soap.Name("Header"))
	w.WriteStartElement(xmlstream.Types.Name("RequestServerVersion"))
	if err := w.WriteAttribute("Version", e.cfg.Version); err != nil {
		return err
	}
	w.WriteEndElement()
	if header != nil {
		if err := w.WriteDocument(header); err != nil {
			return err
		}
	}
	w.WriteEndElement()

	w.WriteStartElement(xmlstream.Soap.Name("Body"))
	if err := body(); err != nil {
		return err
	}
	w.WriteEndElement()
	w.WriteEndElement()
	return nil
}
