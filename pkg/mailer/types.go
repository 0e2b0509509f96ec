package mailer

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAttachmentType is used when an attachment has no MIME type.
const DefaultAttachmentType = "application/octet-stream"

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// String formats the address as "Name <email>" or just the email.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// IsZero reports whether the address has no email.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Email) == ""
}

// Attachment is a file sent with a message. Content holds raw bytes;
// providers encode it as their API requires.
type Attachment struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Disposition string `json:"disposition,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
	Content     []byte `json:"-"`
}

// Message is an email ready for a Sender.
type Message struct {
	Headers     map[string]string
	Tags        map[string]string
	ReplyTo     *Address
	Subject     string
	HTML        string
	Text        string
	From        Address
	To          []Address
	CC          []Address
	BCC         []Address
	Attachments []Attachment
}

// AddTo appends a recipient. Empty emails are ignored.
func (m *Message) AddTo(email, name string) {
	m.To = appendAddress(m.To, email, name)
}

func (m *Message) AddCC(email, name string) {
	m.CC = appendAddress(m.CC, email, name)
}

func (m *Message) AddBCC(email, name string) {
	m.BCC = appendAddress(m.BCC, email, name)
}

func appendAddress(list []Address, email, name string) []Address {
	if strings.TrimSpace(email) == "" {
		return list
	}
	return append(list, Address{Email: email, Name: name})
}

// SetHeader sets a custom header.
func (m *Message) SetHeader(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}

// AddAttachment appends an in-memory attachment. An empty type falls back
// to DefaultAttachmentType.
func (m *Message) AddAttachment(typ, name string, content []byte) {
	if typ == "" {
		typ = DefaultAttachmentType
	}
	m.Attachments = append(m.Attachments, Attachment{Type: typ, Name: name, Content: content})
}

// AddFileAttachment reads path and attaches it. An empty mimeType is
// guessed from the extension and falls back to DefaultAttachmentType; an
// empty name is the file's base name. Extra arguments set the disposition
// and the content id, in that order.
func (m *Message) AddFileAttachment(path, mimeType, name string, extra ...string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrAttachmentFailed, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	if mimeType == "" {
		if mimeType = mime.TypeByExtension(filepath.Ext(path)); mimeType == "" {
			mimeType = DefaultAttachmentType
		}
	}

	a := Attachment{Type: mimeType, Name: name, Content: content}
	if len(extra) > 0 {
		a.Disposition = extra[0]
	}
	if len(extra) > 1 {
		a.ContentID = extra[1]
	}
	m.Attachments = append(m.Attachments, a)
	return nil
}

// Recipients returns every To, CC and BCC address.
func (m *Message) Recipients() []Address {
	out := make([]Address, 0, len(m.To)+len(m.CC)+len(m.BCC))
	out = append(out, m.To...)
	out = append(out, m.CC...)
	return append(out, m.BCC...)
}

// Validate checks the message can be delivered. All problems are joined.
func (m *Message) Validate() error {
	var errs []error
	if m.From.IsZero() {
		errs = append(errs, ErrNoSender)
	}
	if len(m.To) == 0 {
		errs = append(errs, ErrNoRecipient)
	}
	for _, a := range m.Recipients() {
		if a.IsZero() || !strings.Contains(a.Email, "@") {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidAddress, a.Email))
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, ErrNoSubject)
	}
	if m.HTML == "" && m.Text == "" {
		errs = append(errs, ErrNoContent)
	}
	return errors.Join(errs...)
}

// AddressList formats addresses for providers that take strings.
func AddressList(list []Address) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.String()
	}
	return out
}
