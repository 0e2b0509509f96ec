package crud

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/bulk"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// ExportField is one column of an xlsx export.
type ExportField struct {
	Field  string
	Column string
}

// BulkEditField is a field offered on the bulk edit form. Name is the form
// field holding the new value and Path the record path it is written to.
type BulkEditField struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Policy holds the query and persistence rules of a resource.
type Policy struct {
	// Custom contributes an extra predicate to every filtered list.
	Custom func(ctx context.Context, c *Controller) query.Predicate
	// Sanitize cleans submitted form values before they reach a record.
	Sanitize func(string) string
	// Fields restricts which form fields are copied onto records.
	// Empty accepts every field except the reserved ones.
	Fields         []string
	SearchFields   []string
	FilterFields   []string
	RelationFields []string
	Populate       []string
	ExportFields   []ExportField
	BulkEditFields []BulkEditField
	Validators     []record.Validator
	// Concurrency bounds bulk delete and import fan-out.
	Concurrency int
	// BulkCap bounds how many records bulk edit and export touch.
	BulkCap int
}

// Templates names the views of a resource.
type Templates struct {
	List            string
	Create          string
	Edit            string
	View            string
	Import          string
	BulkEdit        string
	BulkEditPreview string
}

func defaultTemplates(name string) Templates {
	return Templates{
		List:            name + "/list",
		Create:          name + "/create",
		Edit:            name + "/edit",
		View:            name + "/view",
		Import:          name + "/import",
		BulkEdit:        name + "/bulk_edit",
		BulkEditPreview: name + "/bulk_edit_preview",
	}
}

// Hook runs at a fixed point of an action. Returning an error aborts the
// action with an error flash and a redirect to the list. List hooks receive
// a nil record.
type Hook func(ctx context.Context, c *Controller, r record.Record) error

// Hooks are the extension points of the built-in actions.
type Hooks struct {
	BeforeSave       Hook
	OnBeforeCreate   Hook
	OnAfterCreate    Hook
	OnBeforeEdit     Hook
	OnAfterEdit      Hook
	OnBeforeLoadList Hook
	OnAfterLoadList  Hook
}

// Observer receives action and bulk outcomes, typically to record metrics.
type Observer interface {
	ObserveAction(resource, action string, state State, d time.Duration)
	ObserveBulk(resource, operation string, succeeded, failed int)
}

// Archiver keeps a copy of each export.
type Archiver func(ctx context.Context, filename, contentType string, body []byte) error

// Resource is the long-lived configuration of one CRUD collection.
type Resource struct {
	store     record.Store
	observer  Observer
	archiver  Archiver
	logger    *slog.Logger
	bus       *Bus
	actions   map[string]string
	handlers  map[string]ActionFunc
	name      string
	baseURL   string
	hooks     Hooks
	templates Templates
	policy    Policy
	mu        sync.RWMutex
}

// Option configures a Resource.
type Option func(*Resource)

// WithPolicy sets the query and persistence policy.
func WithPolicy(p Policy) Option {
	return func(r *Resource) {
		r.policy = p
	}
}

// WithTemplates overrides template names. Empty names keep the default.
func WithTemplates(t Templates) Option {
	return func(r *Resource) {
		set := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		set(&r.templates.List, t.List)
		set(&r.templates.Create, t.Create)
		set(&r.templates.Edit, t.Edit)
		set(&r.templates.View, t.View)
		set(&r.templates.Import, t.Import)
		set(&r.templates.BulkEdit, t.BulkEdit)
		set(&r.templates.BulkEditPreview, t.BulkEditPreview)
	}
}

// WithHooks sets the action hooks.
func WithHooks(h Hooks) Option {
	return func(r *Resource) {
		r.hooks = h
	}
}

// WithListener registers a lifecycle listener.
func WithListener(e Event, l Listener) Option {
	return func(r *Resource) {
		r.bus.On(e, l)
	}
}

// WithAction registers a custom handler and maps the external action to it.
func WithAction(external string, fn ActionFunc) Option {
	return func(r *Resource) {
		r.handlers[external] = fn
		r.actions[external] = external
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resource) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Resource) {
		r.observer = o
	}
}

// WithArchiver stores a copy of every export.
func WithArchiver(a Archiver) Option {
	return func(r *Resource) {
		r.archiver = a
	}
}

// NewResource creates a resource named name served under baseURL.
func NewResource(name, baseURL string, store record.Store, opts ...Option) (*Resource, error) {
	if name == "" || store == nil {
		return nil, ErrInvalidResource
	}
	baseURL = "/" + strings.Trim(baseURL, "/")
	if baseURL == "/" {
		return nil, errors.Join(ErrInvalidResource, errors.New("base url is required"))
	}

	r := &Resource{
		name:      name,
		baseURL:   baseURL,
		store:     store,
		templates: defaultTemplates(name),
		actions:   defaultActions(),
		handlers:  defaultHandlers(),
		bus:       newBus(),
		logger:    logger.NewNope(),
	}
	r.bus.On(EventItemCreate, onItemInserted)
	r.bus.On(EventItemUpdate, onItemSaved)

	for _, opt := range opts {
		opt(r)
	}
	if r.policy.Concurrency <= 0 {
		r.policy.Concurrency = bulk.DefaultConcurrency
	}
	if r.policy.BulkCap <= 0 {
		r.policy.BulkCap = bulk.DefaultCap
	}
	return r, nil
}

// MustResource is NewResource that panics on invalid configuration.
func MustResource(name, baseURL string, store record.Store, opts ...Option) *Resource {
	r, err := NewResource(name, baseURL, store, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Resource) Name() string { return r.name }
func (r *Resource) BaseURL() string { return r.baseURL }
func (r *Resource) Store() record.Store { return r.store }
func (r *Resource) Policy() Policy { return r.policy }
func (r *Resource) Templates() Templates { return r.templates }
func (r *Resource) Logger() *slog.Logger { return r.logger }

// On registers a lifecycle listener.
func (r *Resource) On(e Event, l Listener) {
	r.bus.On(e, l)
}
