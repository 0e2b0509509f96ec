package record

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

// Memory is an in-process Store. Records keep insertion order.
// It is safe for concurrent use.
type Memory struct {
	items      map[string]Record
	refs       map[string]Store
	newID      func() string
	collection string
	order      []string
	mu         sync.RWMutex
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMemoryReference registers a reference field used for population.
func WithMemoryReference(ref Reference) MemoryOption {
	return func(m *Memory) {
		if ref.Target != nil && ref.Field != "" {
			m.refs[ref.Field] = ref.Target
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMemory creates an empty in-memory store for collection.
func NewMemory(collection string, opts ...MemoryOption) *Memory {
	m := &Memory{
		collection: collection,
		items:      make(map[string]Record),
		refs:       make(map[string]Store),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Collection() string { return m.collection }

func (m *Memory) FindByID(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

func (m *Memory) FindByIDAndPopulate(ctx context.Context, id string, fields []string) (Record, error) {
	r, err := m.FindByID(ctx, id)
	if err != nil || r == nil {
		return r, err
	}
	if err := populate(ctx, r, m.refs, fields); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Memory) FindAll(ctx context.Context, p query.Predicate) ([]Record, error) {
	return m.Fetch(ctx, FetchOptions{Predicate: p})
}

func (m *Memory) Count(ctx context.Context, p query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, id := range m.order {
		if query.Match(p, m.items[id]) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		if r := m.items[id]; query.Match(opts.Predicate, r) {
			matched = append(matched, r.Clone())
		}
	}
	m.mu.RUnlock()

	query.Sort(matched, opts.Sort)

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []Record{}, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	if len(opts.Populate) > 0 {
		for _, r := range matched {
			if err := populate(ctx, r, m.refs, opts.Populate); err != nil {
				return nil, err
			}
		}
	}
	return matched, nil
}

func (m *Memory) Insert(ctx context.Context, data Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := data.Clone()
	if r == nil {
		r = Record{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := r.ID()
	if id == "" {
		id = m.newID()
		r[FieldID] = id
	}
	if _, exists := m.items[id]; exists {
		return nil, ErrInvalidRecord
	}
	m.items[id] = r
	m.order = append(m.order, id)
	return r.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, r Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := r.ID()
	if id == "" {
		return nil, ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil, ErrNotFound
	}
	stored := r.Clone()
	m.items[id] = stored
	return stored.Clone(), nil
}

func (m *Memory) RemoveByID(ctx context.Context, id, actor string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	delete(m.items, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })

	r[FieldLastModifiedBy] = actor
	return r, nil
}

// Stream walks a snapshot of the ids present when iteration starts.
// Records removed during iteration are skipped.
func (m *Memory) Stream(ctx context.Context, p query.Predicate) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		m.mu.RLock()
		ids := slices.Clone(m.order)
		m.mu.RUnlock()

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			m.mu.RLock()
			r, ok := m.items[id]
			if ok {
				r = r.Clone()
			}
			m.mu.RUnlock()

			if !ok || !query.Match(p, r) {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}
