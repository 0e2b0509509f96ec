// Package render turns controller responses into bytes.
//
// HTML views are templ components looked up by template name in a
// [Templates] registry; JSON uses encoding/json.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/a-h/templ"
)

var (
	ErrTemplateNotFound = errors.New("render: template not found")
	ErrRenderFailed     = errors.New("render: failed to render template")
)

// Renderer produces response bodies.
type Renderer interface {
	RenderHTML(ctx context.Context, template string, data map[string]any) ([]byte, error)
	RenderJSON(data any) ([]byte, error)
}

// ViewFunc builds a component for a template from its data.
type ViewFunc func(data map[string]any) templ.Component

// Templates maps template names to views. The zero value is not usable;
// create one with New.
type Templates struct {
	views map[string]ViewFunc
	mu    sync.RWMutex
}

// New creates a registry with the given views.
func New(views map[string]ViewFunc) *Templates {
	t := &Templates{views: make(map[string]ViewFunc, len(views))}
	for name, fn := range views {
		t.views[name] = fn
	}
	return t
}

// Register adds or replaces a view.
func (t *Templates) Register(name string, fn ViewFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.views[name] = fn
}

// Has reports whether a view is registered.
func (t *Templates) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.views[name]
	return ok
}

func (t *Templates) RenderHTML(ctx context.Context, name string, data map[string]any) ([]byte, error) {
	t.mu.RLock()
	fn, ok := t.views[name]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.Join(ErrTemplateNotFound, fmt.Errorf("template %q", name))
	}

	var buf bytes.Buffer
	if err := fn(data).Render(ctx, &buf); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

func (t *Templates) RenderJSON(data any) ([]byte, error) {
	return json.Marshal(data)
}
