package crud

import (
	"context"
	"sync"

	"github.com/dmitrymomot/scaffold/pkg/record"
)

// Event is a record lifecycle event.
type Event string

const (
	EventItemCreate       Event = "ITEM_CREATE"
	EventItemBeforeInsert Event = "ITEM_BEFORE_INSERT"
	EventItemUpdate       Event = "ITEM_UPDATE"
	EventItemBeforeUpdate Event = "ITEM_BEFORE_UPDATE"
	EventItemDelete       Event = "ITEM_DELETE"
)

// Listener reacts to a lifecycle event. The record may be nil for
// ITEM_DELETE when nothing was removed.
type Listener func(ctx context.Context, c *Controller, r record.Record)

// Bus dispatches events synchronously in registration order.
type Bus struct {
	listeners map[Event][]Listener
	mu        sync.RWMutex
}

func newBus() *Bus {
	return &Bus{listeners: make(map[Event][]Listener)}
}

// On registers a listener.
func (b *Bus) On(e Event, l Listener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[e] = append(b.listeners[e], l)
}

// Emit calls every listener of e.
func (b *Bus) Emit(ctx context.Context, e Event, c *Controller, r record.Record) {
	b.mu.RLock()
	ls := append([]Listener(nil), b.listeners[e]...)
	b.mu.RUnlock()

	for _, l := range ls {
		l(ctx, c, r)
	}
}
