package crud

import (
	"encoding/json"
	"sync"

	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/query"
)

// FilterStore keeps the list state of each resource between requests.
type FilterStore interface {
	LoadFilter(key string) (query.ListState, bool)
	SaveFilter(key string, s query.ListState)
}

const filterKeyPrefix = "filter:"

// SessionFilters stores list state as JSON values in a session.
type SessionFilters struct {
	store flash.Store
}

// NewSessionFilters wraps a session value store.
func NewSessionFilters(store flash.Store) *SessionFilters {
	return &SessionFilters{store: store}
}

func (f *SessionFilters) LoadFilter(key string) (query.ListState, bool) {
	var st query.ListState
	if f == nil || f.store == nil {
		return st, false
	}
	raw, ok := f.store.GetValue(filterKeyPrefix + key)
	if !ok {
		return st, false
	}
	s, ok := raw.(string)
	if !ok {
		return st, false
	}
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return query.ListState{}, false
	}
	return st, true
}

func (f *SessionFilters) SaveFilter(key string, s query.ListState) {
	if f == nil || f.store == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	f.store.SetValue(filterKeyPrefix+key, string(b))
}

// MemoryFilters is a FilterStore held in memory, for tests and API clients.
type MemoryFilters struct {
	states map[string]query.ListState
	mu     sync.Mutex
}

func NewMemoryFilters() *MemoryFilters {
	return &MemoryFilters{states: make(map[string]query.ListState)}
}

func (f *MemoryFilters) LoadFilter(key string) (query.ListState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[key]
	return st, ok
}

func (f *MemoryFilters) SaveFilter(key string, s query.ListState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[key] = s
}
