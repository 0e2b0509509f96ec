package record

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

// NotificationKind classifies an integrity finding.
type NotificationKind string

const (
	KindMissingMandatory NotificationKind = "missing_mandatory"
	KindBrokenReference  NotificationKind = "broken_reference"
	KindCustom           NotificationKind = "custom"
)

// Notification is one integrity finding about a stored record.
type Notification struct {
	Resource string           `json:"resource"`
	RecordID string           `json:"record_id"`
	Field    string           `json:"field,omitempty"`
	Kind     NotificationKind `json:"kind"`
	Message  string           `json:"message"`
}

// NotificationSink stores integrity findings per resource.
type NotificationSink interface {
	Clear(ctx context.Context, resource string) error
	Notify(ctx context.Context, n Notification) error
}

// MemorySink is an in-process NotificationSink.
type MemorySink struct {
	items map[string][]Notification
	mu    sync.Mutex
}

func NewMemorySink() *MemorySink {
	return &MemorySink{items: make(map[string][]Notification)}
}

func (s *MemorySink) Clear(_ context.Context, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, resource)
	return nil
}

func (s *MemorySink) Notify(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[n.Resource] = append(s.items[n.Resource], n)
	return nil
}

// List returns the notifications recorded for resource in arrival order.
func (s *MemorySink) List(resource string) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items[resource])
}

// StoreSink keeps notifications as records of a dedicated collection, one
// record per finding.
type StoreSink struct {
	store Store
}

func NewStoreSink(store Store) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Clear(ctx context.Context, resource string) error {
	items, err := s.store.FindAll(ctx, query.Eq{Field: "resource", Value: resource})
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, err := s.store.RemoveByID(ctx, item.ID(), ""); err != nil {
			return err
		}
	}
	return nil
}

func (s *StoreSink) Notify(ctx context.Context, n Notification) error {
	data := Record{
		"resource":  n.Resource,
		"record_id": n.RecordID,
		"kind":      string(n.Kind),
		"message":   n.Message,
	}
	if n.Field != "" {
		data["field"] = n.Field
	}
	_, err := s.store.Insert(ctx, data)
	return err
}
