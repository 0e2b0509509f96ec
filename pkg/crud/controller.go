package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// Flash message texts.
const (
	msgSaveFailed       = "Failed to save item! "
	msgInserted         = "Item successfully inserted to the database!"
	msgUpdated          = "Item successfully updated in the database!"
	msgEditFailed       = "Failed to edit item! "
	msgEditNotFound     = "Failed to edit Item. Item is not exists in the database!"
	msgImported         = "Items successfully imported to the database!"
	msgImportFailed     = "Failed to import items! "
	msgBulkUpdated      = "Items successfully updated in the database!"
	msgDeleteFailed     = "Failed to delete item! "
	msgRemoved          = "Item successfully removed from the database!"
	msgDeleteNotFound   = "Failed to delete Item. Item is not exists in the database!"
	msgBulkRemoved      = "Items successfully removed from the database!"
	msgActionNotAllowed = "Action isn't supported"
)

// Form fields with a meaning of their own.
const (
	FieldSaveAction    = "saveAction"
	FieldSelectedItems = "selectedItems"
	FieldFile          = "file"
)

// Values of the saveAction form field.
const (
	SaveAndCreateAnother = "save&CreateAnother"
	SaveAndStay          = "save"
)

var reservedFormFields = map[string]struct{}{
	FieldSaveAction:    {},
	FieldSelectedItems: {},
	"_csrf":            {},
	"csrf_token":       {},
}

var errNoResponse = errors.New("crud: action produced no response")

// Env carries the per-request collaborators of a Controller.
// Any of them may be nil.
type Env struct {
	Flash   *flash.Sink
	Filters FilterStore
	Logger  *slog.Logger
}

// Controller handles one request against a Resource.
type Controller struct {
	res       *Resource
	flash     *flash.Sink
	filters   FilterStore
	logger    *slog.Logger
	item      record.Record
	data      map[string]any
	req       Request
	list      query.ListState
	resp      Response
	state     State
	responded bool
}

// NewController prepares a controller in the Created state.
func NewController(res *Resource, req Request, env Env) *Controller {
	c := &Controller{
		res:     res,
		req:     req,
		flash:   env.Flash,
		filters: env.Filters,
		logger:  env.Logger,
		data:    make(map[string]any),
		state:   StateCreated,
	}
	if c.flash == nil {
		c.flash = flash.New(nil)
	}
	if c.logger == nil {
		c.logger = res.logger
	}
	return c
}

// Dispatch runs the lifecycle: resolve the action, pre-load, then run the
// handler unless pre-load terminated the response.
func (c *Controller) Dispatch(ctx context.Context) (Response, error) {
	start := time.Now()
	action := c.Action()
	defer func() {
		if c.res.observer != nil {
			c.res.observer.ObserveAction(c.res.name, action.Name, c.state, time.Since(start))
		}
	}()

	c.state = StateInitialized
	ctx = withAction(ctx, c.res.name, action.Name)

	c.state = StatePreLoading
	c.preLoad(ctx)
	if c.Terminated() {
		return c.resp, nil
	}

	c.state = StateLoading
	h := c.res.handler(action.Handler)
	if h == nil {
		c.respond(Fail(http.StatusNotFound, msgActionNotAllowed))
		c.state = StateTerminated
		return c.resp, errors.Join(ErrUnknownAction, errors.New(action.Handler))
	}

	if err := h(ctx, c); err != nil {
		if !c.Terminated() && c.resp.Kind != KindError {
			c.respond(Fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
		}
		c.state = StateTerminated
		c.logger.ErrorContext(ctx, "crud action failed",
			slog.String("resource", c.res.name),
			slog.String("action", action.Name),
			slog.Any("error", err))
		return c.resp, err
	}

	if !c.responded {
		c.respond(Fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
		c.state = StateTerminated
		return c.resp, errNoResponse
	}
	if !c.Terminated() {
		c.state = StateRendered
	}
	return c.resp, nil
}

// preLoad caches the list filter state and loads the record of item
// actions. Failures are recovered with a flash and a redirect to the list.
func (c *Controller) preLoad(ctx context.Context) {
	action := c.Action()
	c.cacheListState(action)

	switch action.Name {
	case ActionEdit, ActionDoEdit, ActionView:
	default:
		return
	}

	var (
		item record.Record
		err  error
	)
	if action.Name == ActionView && len(c.res.policy.Populate) > 0 {
		item, err = c.res.store.FindByIDAndPopulate(ctx, action.ItemID, c.res.policy.Populate)
	} else {
		item, err = c.res.store.FindByID(ctx, action.ItemID)
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "crud preload failed",
			slog.String("resource", c.res.name),
			slog.String("id", action.ItemID),
			slog.Any("error", err))
		c.flash.Add(msgEditFailed+err.Error(), flash.Error)
		c.Redirect(c.ActionURL(ActionList, nil))
		return
	}
	if item == nil {
		c.flash.Add(msgEditNotFound, flash.Error)
		c.Redirect(c.ActionURL(ActionList, nil))
		return
	}
	c.item = item
}

// cacheListState restores the list state of this resource and, for GET
// requests, folds the request's filter parameters into it. Only list
// requests store the result.
func (c *Controller) cacheListState(action Action) {
	key := c.res.baseURL
	if c.filters != nil {
		if st, ok := c.filters.LoadFilter(key); ok {
			c.list = st
		}
	}
	if !c.req.IsGet() {
		return
	}
	c.list = c.list.Merge(c.req.Query, c.req.Params.Page)
	if action.Name == ActionList && c.filters != nil {
		c.filters.SaveFilter(key, c.list)
	}
}

// Action resolves the current action from the request.
func (c *Controller) Action() Action { return c.res.Resolve(c.req) }

func (c *Controller) Resource() *Resource { return c.res }
func (c *Controller) Request() Request { return c.req }
func (c *Controller) State() State { return c.state }
func (c *Controller) Item() record.Record { return c.item }
func (c *Controller) Flash() *flash.Sink { return c.flash }
func (c *Controller) ListState() query.ListState { return c.list }
func (c *Controller) Logger() *slog.Logger { return c.logger }

// Data is the template data of the response.
func (c *Controller) Data() map[string]any { return c.data }

// Set stores a template value.
func (c *Controller) Set(key string, v any) { c.data[key] = v }

// Terminated reports whether the response has been finalised by a redirect
// or a download.
func (c *Controller) Terminated() bool { return c.state == StateTerminated }

// Response returns the response built so far.
func (c *Controller) Response() Response { return c.resp }

// Render responds with template and the controller data.
func (c *Controller) Render(template string) {
	c.respond(HTML(template, c.data))
}

// Redirect terminates the response with a redirect.
func (c *Controller) Redirect(location string) {
	c.respond(Redirect(location))
	c.state = StateTerminated
}

// Respond sets an arbitrary response. Redirects and downloads terminate.
func (c *Controller) Respond(r Response) {
	c.respond(r)
	if r.Kind == KindRedirect || r.Kind == KindFile {
		c.state = StateTerminated
	}
}

func (c *Controller) respond(r Response) {
	c.resp = r
	c.responded = true
}

// FilterSpec builds the list filter from the cached search value and the
// request's field filters.
func (c *Controller) FilterSpec(ctx context.Context) query.FilterSpec {
	p := c.res.policy
	spec := query.FilterSpec{
		InField:  query.ParseFieldFilters(c.req.Query, p.FilterFields),
		Relation: query.ParseFieldFilters(c.req.Query, p.RelationFields),
	}
	if c.list.Search != "" && len(p.SearchFields) > 0 {
		spec.Search = &query.Search{Fields: p.SearchFields, Value: c.list.Search}
	}
	if p.Custom != nil {
		spec.Custom = p.Custom(ctx, c)
	}
	return spec
}

// ItemFromForm copies submitted form values onto dst, creating it when nil.
// Dotted field names address nested values; repeated fields and "name[]"
// fields become lists.
func (c *Controller) ItemFromForm(dst record.Record) record.Record {
	if dst == nil {
		dst = record.Record{}
	}
	keys := make([]string, 0, len(c.req.Form))
	for k := range c.req.Form {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		name := strings.TrimSuffix(key, "[]")
		if !c.acceptsField(name) {
			continue
		}
		values := c.req.Form[key]
		if len(values) == 1 && name == key {
			dst.Set(name, c.sanitize(values[0]))
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = c.sanitize(v)
		}
		dst.Set(name, list)
	}
	return dst
}

func (c *Controller) acceptsField(name string) bool {
	if name == "" || name == record.FieldID || name == record.FieldLastModifiedBy {
		return false
	}
	if _, reserved := reservedFormFields[name]; reserved {
		return false
	}
	if len(c.res.policy.Fields) == 0 {
		return true
	}
	return slices.Contains(c.res.policy.Fields, name)
}

func (c *Controller) sanitize(v string) any {
	if c.res.policy.Sanitize == nil {
		return v
	}
	return c.res.policy.Sanitize(v)
}

// validate runs the resource validators.
func (c *Controller) validate(ctx context.Context, r record.Record) error {
	return record.Validate(ctx, r, c.res.policy.Validators...)
}

// runHook calls h when set.
func (c *Controller) runHook(ctx context.Context, h Hook, r record.Record) error {
	if h == nil {
		return nil
	}
	return h(ctx, c, r)
}

// fail flashes msg with err and redirects to the list.
func (c *Controller) fail(ctx context.Context, msg string, err error) {
	c.logger.ErrorContext(ctx, "crud action failed",
		slog.String("resource", c.res.name),
		slog.String("id", c.Action().ItemID),
		slog.Any("error", err))
	c.flash.Add(msg+err.Error(), flash.Error)
	c.Redirect(c.ActionURL(ActionList, nil))
}

func (c *Controller) emit(ctx context.Context, e Event, r record.Record) {
	c.res.bus.Emit(ctx, e, c, r)
}
