package schema

import (
	"fmt"
	"strings"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// ID identifies a server object and the version of it the client last saw.
type ID struct {
	ID        string
	ChangeKey string
}

// String returns "Id" or "Id,ChangeKey".
func (id ID) String() string {
	if id.ChangeKey == "" {
		return id.ID
	}
	return id.ID + "," + id.ChangeKey
}

// ParseID parses the String form of an ID.
func ParseID(s string) (ID, error) {
	id, ck, _ := strings.Cut(s, ",")
	if id == "" {
		return ID{}, fmt.Errorf("%w: empty id", propdef.ErrParse)
	}
	return ID{ID: id, ChangeKey: ck}, nil
}

// idCodec reads and writes identities held in the Id and ChangeKey
// attributes of an empty element.
type idCodec struct{}

// IDValue is the codec of ID properties.
var IDValue propdef.Codec = idCodec{}

func (idCodec) ReadValue(r *xmlstream.Reader, def *propdef.Definition) (any, error) {
	v, ok := r.Attr("Id")
	if !ok {
		return nil, fmt.Errorf("%w: %s has no Id attribute", propdef.ErrParse, def)
	}
	ck, _ := r.Attr("ChangeKey")
	if err := r.Skip(); err != nil {
		return nil, err
	}
	return ID{ID: v, ChangeKey: ck}, nil
}

func (idCodec) WriteValue(w *xmlstream.Writer, def *propdef.Definition, v any) error {
	id, ok := v.(ID)
	if !ok {
		return fmt.Errorf("%w: %s holds %T", propdef.ErrValueType, def, v)
	}
	w.WriteStartElement(def.Name)
	if err := w.WriteAttribute("Id", id.ID); err != nil {
		return err
	}
	if id.ChangeKey != "" {
		if err := w.WriteAttribute("ChangeKey", id.ChangeKey); err != nil {
			return err
		}
	}
	w.WriteEndElement()
	return nil
}

func (idCodec) Parse(s string) (any, error) { return ParseID(s) }
