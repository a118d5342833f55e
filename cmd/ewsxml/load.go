package main

import (
	"fmt"
	"io"

	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/propbag"
	"github.com/smnsjas/go-ewscore/schema"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

func (e *env) load(args []string) error {
	fs := e.newFlagSet("load")
	format := fs.StringP("format", "f", "text", "output format: text or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "text" && *format != "yaml" {
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
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

	if *format == "yaml" {
		return writeYAML(e.stdout, entities)
	}
	for _, ent := range entities {
		if _, err := io.WriteString(e.stdout, e.projection(ent, true)); err != nil {
			return err
		}
	}
	return nil
}

// readEntities loads the entity at the root of src, or every entity inside a
// root container element.
func (e *env) readEntities(src io.Reader) ([]*entity.Entity, error) {
	r := xmlstream.NewReader(src)
	if err := r.Read(); err != nil {
		return nil, err
	}
	if _, ok := e.registry.Lookup(r.Name()); ok {
		ent, err := e.loadEntity(r)
		if err != nil {
			return nil, err
		}
		return []*entity.Entity{ent}, nil
	}

	e.logger.Debug("reading container", "element", r.LocalName())
	var out []*entity.Entity
	err := r.ReadChildren(func() error {
		ent, err := e.loadEntity(r)
		if err != nil {
			return err
		}
		out = append(out, ent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadEntity loads the entity element under the cursor with the configured
// property set.
func (e *env) loadEntity(r *xmlstream.Reader) (*entity.Entity, error) {
	lo := propbag.LoadOptions{SummaryOnly: e.cfg.SummaryOnly}
	if s, ok := schema.Lookup(r.LocalName()); ok {
		set, err := e.cfg.PropertySet(s)
		if err != nil {
			return nil, err
		}
		lo.Requested = set
	}
	return e.registry.Load(r, e.cfg.Version, lo, entity.WithLogger(e.logger))
}
