package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (e *memoryEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a process-local cache. With a max entry count it evicts the
// least recently used key.
type Memory[V any] struct {
	items      map[string]*list.Element
	lru        *list.List
	done       chan struct{}
	defaultTTL time.Duration
	interval   time.Duration
	maxEntries int
	mu         sync.Mutex
	closed     bool
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	defaultTTL time.Duration
	interval   time.Duration
	maxEntries int
}

// WithDefaultTTL sets the TTL used for zero TTL writes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.defaultTTL = d
	}
}

// WithCleanupInterval sets how often expired keys are purged. Zero
// disables the background purge; expired keys are then dropped on read.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.interval = d
	}
}

// WithMaxEntries bounds the cache size. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) {
		c.maxEntries = n
	}
}

// NewMemory creates a memory cache. Call Close to stop the purge loop.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{defaultTTL: DefaultTTL, interval: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		done:       make(chan struct{}),
		defaultTTL: cfg.defaultTTL,
		interval:   cfg.interval,
		maxEntries: cfg.maxEntries,
	}
	if m.interval > 0 {
		go m.purgeLoop()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*memoryEntry[V])
	if e.expired(time.Now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	if ttl = resolveTTL(ttl, m.defaultTTL); ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		e := el.Value.(*memoryEntry[V])
		e.value, e.expiresAt = value, expiresAt
		m.lru.MoveToFront(el)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.lru.PushFront(&memoryEntry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	return err == nil, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Len returns the number of stored keys, including expired ones not yet
// purged.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) purgeLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.purge(now)
		}
	}
}

func (m *Memory[V]) purge(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryEntry[V]).expired(now) {
			m.remove(el)
		}
		el = prev
	}
}

// remove requires m.mu.
func (m *Memory[V]) remove(el *list.Element) {
	m.lru.Remove(el)
	delete(m.items, el.Value.(*memoryEntry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
