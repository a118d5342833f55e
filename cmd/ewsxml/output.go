package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/schema"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

type palette struct {
	entity *color.Color
	name   *color.Color
	muted  *color.Color
	insert *color.Color
	delete *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		entity: color.New(color.FgMagenta, color.Bold),
		name:   color.New(color.FgCyan),
		muted:  color.New(color.FgHiBlack),
		insert: color.New(color.FgGreen),
		delete: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.entity, p.name, p.muted, p.insert, p.delete} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// describe renders a property value on one line.
func describe(v any) string {
	switch v := v.(type) {
	case schema.ID:
		return v.String()
	case *schema.MessageBody:
		return "(" + v.Type().String() + ") " + strings.ReplaceAll(v.Text(), "\n", `\n`)
	case *schema.StringList:
		return "[" + strings.Join(v.Values(), ", ") + "]"
	case *schema.Recipients:
		var parts []string
		for _, m := range v.Items() {
			parts = append(parts, m.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *schema.EmailAddressDictionary:
		var parts []string
		for _, k := range v.Keys() {
			addr, _ := v.Get(k)
			parts = append(parts, k.String()+"="+addr)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if s, err := xmlstream.FormatValue(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// yamlValue returns the form of a property value used in YAML output.
func yamlValue(v any) any {
	switch v := v.(type) {
	case bool, int, float64:
		return v
	case schema.ID:
		m := map[string]string{"id": v.ID}
		if v.ChangeKey != "" {
			m["change_key"] = v.ChangeKey
		}
		return m
	case *schema.MessageBody:
		return map[string]string{"type": v.Type().String(), "text": v.Text()}
	case *schema.StringList:
		return v.Values()
	case *schema.Recipients:
		return v.Items()
	case *schema.EmailAddressDictionary:
		m := make(map[string]string, v.Len())
		for _, k := range v.Keys() {
			m[k.String()], _ = v.Get(k)
		}
		return m
	}
	return describe(v)
}

// properties returns the present properties of ent as name/value pairs in
// schema order.
func properties(ent *entity.Entity) (names []string, values []any) {
	for _, def := range ent.Schema().Properties() {
		if v, ok := ent.Bag().Lookup(def); ok {
			names = append(names, def.String())
			values = append(values, v)
		}
	}
	return names, values
}

// projection renders ent as text, one property per line.
func (e *env) projection(ent *entity.Entity, colored bool) string {
	var b strings.Builder
	header := ent.Schema().Name
	if id := ent.ID(); id != nil {
		header += " " + describe(id)
	}
	if colored {
		header = e.colors.entity.Sprint(header)
	}
	b.WriteString(header + "\n")
	names, values := properties(ent)
	for i, name := range names {
		if colored {
			name = e.colors.name.Sprint(name)
		}
		fmt.Fprintf(&b, "  %s: %s\n", name, describe(values[i]))
	}
	return b.String()
}

func writeYAML(w io.Writer, entities []*entity.Entity) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, ent := range entities {
		props := &yaml.Node{Kind: yaml.MappingNode}
		names, values := properties(ent)
		for i, name := range names {
			var val yaml.Node
			if err := val.Encode(yamlValue(values[i])); err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			props.Content = append(props.Content, yamlString(name), &val)
		}
		doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			yamlString("entity"), yamlString(ent.Schema().Name),
			yamlString("properties"), props,
		}}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return enc.Close()
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// writeDiff prints a line diff of two projections.
func (e *env) writeDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(w, e.colors.insert.Sprint("+ "+line))
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(w, e.colors.delete.Sprint("- "+line))
			default:
				fmt.Fprintln(w, e.colors.muted.Sprint("  "+line))
			}
		}
	}
}

// writeMarkup runs fn against a fresh writer and prints the result, indented
// unless --compact was given.
func (e *env) writeMarkup(fn func(w *xmlstream.Writer) error) error {
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if e.compact {
		buf.WriteByte('\n')
		_, err := e.stdout.Write(buf.Bytes())
		return err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("reindent: %w", err)
	}
	doc.Indent(2)
	_, err := doc.WriteTo(e.stdout)
	return err
}
