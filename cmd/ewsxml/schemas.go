package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/schema"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

func (e *env) schema(args []string) error {
	fs := e.newFlagSet("schema")
	shape := fs.Bool("shape", false, "print the shape element of the configured property set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	switch fs.NArg() {
	case 0:
		fmt.Fprintln(tw, "SCHEMA\tELEMENT\tPROPERTIES")
		for _, s := range schema.All() {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", e.colors.entity.Sprint(s.Name), s.Element, len(s.Properties()))
		}
		return tw.Flush()
	case 1:
	default:
		return fmt.Errorf("%w: schema takes one type", errUsage)
	}

	s, ok := schema.Lookup(fs.Arg(0))
	if !ok {
		return fmt.Errorf("%w: unknown type %q", errUsage, fs.Arg(0))
	}
	if *shape {
		set, err := e.cfg.PropertySet(s)
		if err != nil {
			return err
		}
		element := xmlstream.Messages.Name("ItemShape")
		if s.Changes == propdef.FolderChanges {
			element = xmlstream.Messages.Name("FolderShape")
		}
		return e.writeMarkup(func(w *xmlstream.Writer) error { return set.WriteShape(w, element) })
	}

	// Properties the configured version does not support are dimmed; a star
	// marks the first-class properties.
	fmt.Fprintln(tw, "PROPERTY\tFIELD URI\tKIND\tFLAGS\tSINCE")
	for _, def := range s.Properties() {
		name := def.String()
		if s.IsFirstClass(def, e.cfg.SummaryOnly) {
			name += "*"
		}
		if def.SupportedIn(e.cfg.Version) {
			name = e.colors.name.Sprint(name)
		} else {
			name = e.colors.muted.Sprint(name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, def.FieldURI, def.Kind, def.Flags, def.Version)
	}
	return tw.Flush()
}
