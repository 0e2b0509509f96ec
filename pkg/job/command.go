package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// executor runs one command with raw JSON parameters.
type executor interface {
	Execute(ctx context.Context, params json.RawMessage) error
}

type registry struct {
	commands map[string]executor
	mu       sync.RWMutex
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]executor)}
}

func (r *registry) register(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = e
}

func (r *registry) get(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.commands[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Collect(maps.Keys(r.commands))
	slices.Sort(names)
	return names
}

// typedCommand decodes parameters into P before calling fn.
type typedCommand[P any] struct {
	fn func(context.Context, P) error
}

func (c typedCommand[P]) Execute(ctx context.Context, raw json.RawMessage) error {
	var params P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return errors.Join(ErrInvalidParams, err)
		}
	}
	return c.fn(ctx, params)
}

// scheduledCommand ignores parameters.
type scheduledCommand func(context.Context) error

func (c scheduledCommand) Execute(ctx context.Context, _ json.RawMessage) error {
	return c(ctx)
}
