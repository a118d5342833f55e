package schema

import (
	"slices"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

// Mailbox is an addressable recipient.
type Mailbox struct {
	Name         string `yaml:"name,omitempty"`
	EmailAddress string `yaml:"email"`
	RoutingType  string `yaml:"routing_type,omitempty"`
}

func (m Mailbox) String() string {
	if m.Name == "" {
		return m.EmailAddress
	}
	return m.Name + " <" + m.EmailAddress + ">"
}

func (m *Mailbox) readXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		var dst *string
		switch {
		case r.IsStartElement(xmlstream.Types, "Name"):
			dst = &m.Name
		case r.IsStartElement(xmlstream.Types, "EmailAddress"):
			dst = &m.EmailAddress
		case r.IsStartElement(xmlstream.Types, "RoutingType"):
			dst = &m.RoutingType
		default:
			return nil
		}
		s, err := r.ReadValue()
		*dst = s
		return err
	})
}

func (m Mailbox) writeXML(w *xmlstream.Writer) error {
	w.WriteStartElement(xmlstream.Types.Name("Mailbox"))
	for _, f := range []struct{ local, v string }{
		{"Name", m.Name},
		{"EmailAddress", m.EmailAddress},
		{"RoutingType", m.RoutingType},
	} {
		if f.v == "" {
			continue
		}
		if err := w.WriteElementValue(xmlstream.Types.Name(f.local), f.v); err != nil {
			return err
		}
	}
	w.WriteEndElement()
	return nil
}

// Recipients is an ordered list of mailboxes.
type Recipients struct {
	propdef.Tracked
	items []Mailbox
}

// NewRecipients returns a list holding mailboxes.
func NewRecipients(mailboxes ...Mailbox) *Recipients {
	return &Recipients{items: slices.Clone(mailboxes)}
}

// Items returns a copy of the mailboxes.
func (rc *Recipients) Items() []Mailbox { return slices.Clone(rc.items) }

// Len returns the number of recipients.
func (rc *Recipients) Len() int { return len(rc.items) }

// Add appends a recipient with an SMTP address.
func (rc *Recipients) Add(name, address string) {
	rc.AddMailbox(Mailbox{Name: name, EmailAddress: address})
}

// AddMailbox appends m.
func (rc *Recipients) AddMailbox(m Mailbox) {
	rc.items = append(rc.items, m)
	rc.Changed()
}

// RemoveAddress removes every recipient with the given address.
func (rc *Recipients) RemoveAddress(address string) bool {
	n := len(rc.items)
	rc.items = slices.DeleteFunc(rc.items, func(m Mailbox) bool { return m.EmailAddress == address })
	if len(rc.items) == n {
		return false
	}
	rc.Changed()
	return true
}

// Clear removes every recipient.
func (rc *Recipients) Clear() {
	if len(rc.items) == 0 {
		return
	}
	rc.items = nil
	rc.Changed()
}

// ReadXML implements propdef.ComplexValue.
func (rc *Recipients) ReadXML(r *xmlstream.Reader) error {
	return r.ReadChildren(func() error {
		if !r.IsStartElement(xmlstream.Types, "Mailbox") {
			return nil
		}
		var m Mailbox
		if err := m.readXML(r); err != nil {
			return err
		}
		rc.items = append(rc.items, m)
		return nil
	})
}

// WriteXML implements propdef.ComplexValue.
func (rc *Recipients) WriteXML(w *xmlstream.Writer) error {
	for _, m := range rc.items {
		if err := m.writeXML(w); err != nil {
			return err
		}
	}
	return nil
}
