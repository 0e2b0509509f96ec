// Package flash keeps user-facing status messages between requests.
//
// Messages are stored as a JSON string in the session under [SessionKey], so
// they survive any session backend that serialises values. They are added
// while handling one request and drained when the next page renders.
package flash

import (
	"encoding/json"
	"sync"
)

// SessionKey is the session value holding pending messages.
const SessionKey = "flash"

// Type is the severity of a message.
type Type string

const (
	Info    Type = "info"
	Success Type = "success"
	Danger  Type = "danger"
	Warning Type = "warning"
)

// Error is an alias of Danger.
const Error = Danger

// ParseType maps a name to a Type. Unknown names become Info.
func ParseType(s string) Type {
	switch t := Type(s); t {
	case Info, Success, Danger, Warning:
		return t
	case "error":
		return Danger
	default:
		return Info
	}
}

// Message is one flash message.
type Message struct {
	Text string `json:"text"`
	Type Type   `json:"type"`
}

// Store is the session surface the sink needs. *session.Session implements it.
type Store interface {
	GetValue(key string) (any, bool)
	SetValue(key string, val any)
	DeleteValue(key string)
}

// Sink accumulates messages in a session store.
// It is safe for concurrent use by the goroutines of one request.
type Sink struct {
	store Store
	mu    sync.Mutex
}

// New creates a sink backed by store. A nil store yields a sink that
// drops every message.
func New(store Store) *Sink {
	return &Sink{store: store}
}

// Add appends a message.
func (s *Sink) Add(text string, t Type) {
	s.AddMany([]string{text}, t)
}

// AddMany appends several messages of the same type.
func (s *Sink) AddMany(texts []string, t Type) {
	if s == nil || s.store == nil || len(texts) == 0 {
		return
	}
	t = ParseType(string(t))

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.load()
	for _, text := range texts {
		msgs = append(msgs, Message{Text: text, Type: t})
	}
	s.save(msgs)
}

// Messages returns the pending messages without removing them.
func (s *Sink) Messages() []Message {
	if s == nil || s.store == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Drain returns the pending messages and clears them.
func (s *Sink) Drain() []Message {
	if s == nil || s.store == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.load()
	if len(msgs) > 0 {
		s.store.DeleteValue(SessionKey)
	}
	return msgs
}

// ByType groups messages by type, keeping order within a type.
func ByType(msgs []Message) map[Type][]string {
	out := make(map[Type][]string)
	for _, m := range msgs {
		out[m.Type] = append(out[m.Type], m.Text)
	}
	return out
}

func (s *Sink) load() []Message {
	raw, ok := s.store.GetValue(SessionKey)
	if !ok {
		return nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}

func (s *Sink) save(msgs []Message) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	s.store.SetValue(SessionKey, string(data))
}
