package crud

import (
	"context"
	"maps"
)

// External action names used in URLs.
const (
	ActionList            = "list"
	ActionNew             = "new"
	ActionCreate          = "create"
	ActionDoCreate        = "doCreate"
	ActionView            = "view"
	ActionEdit            = "edit"
	ActionDoEdit          = "doEdit"
	ActionDelete          = "delete"
	ActionDoDelete        = "doDelete"
	ActionImport          = "import"
	ActionExport          = "export"
	ActionBulkEdit        = "bulkEdit"
	ActionBulkEditPreview = "bulkEditPreview"
	ActionDoBulkEdit      = "doBulkEdit"
	ActionBulkDelete      = "bulkDelete"
)

// Built-in handler names.
const (
	HandlerLoad            = "load"
	HandlerCreate          = "create"
	HandlerDoCreate        = "doCreate"
	HandlerView            = "doView"
	HandlerEdit            = "edit"
	HandlerDoEdit          = "doEdit"
	HandlerDelete          = "doDelete"
	HandlerImport          = "xlsImport"
	HandlerExport          = "xlsExport"
	HandlerBulkEdit        = "bulkEdit"
	HandlerBulkEditPreview = "bulkEditPreview"
	HandlerDoBulkEdit      = "doBulkEdit"
	HandlerBulkDelete      = "bulkDelete"
)

// ActionFunc handles one action. Returning an error ends the request with
// an error response unless the handler already terminated it.
type ActionFunc func(ctx context.Context, c *Controller) error

// Action is the outcome of resolving a request against the registry.
type Action struct {
	// Name is the external action name, "list" for a bare collection URL and
	// "view" for an unregistered segment.
	Name string
	// Handler is the handler registered for Name.
	Handler string
	// ItemID is the id route param. An unregistered segment resolved as
	// "view" is the id itself.
	ItemID string
}

func defaultActions() map[string]string {
	return map[string]string{
		ActionList:            HandlerLoad,
		ActionNew:             HandlerCreate,
		ActionCreate:          HandlerCreate,
		ActionDoCreate:        HandlerDoCreate,
		ActionView:            HandlerView,
		ActionEdit:            HandlerEdit,
		ActionDoEdit:          HandlerDoEdit,
		ActionDelete:          HandlerDelete,
		ActionDoDelete:        HandlerDelete,
		ActionImport:          HandlerImport,
		ActionExport:          HandlerExport,
		ActionBulkEdit:        HandlerBulkEdit,
		ActionBulkEditPreview: HandlerBulkEditPreview,
		ActionDoBulkEdit:      HandlerDoBulkEdit,
		ActionBulkDelete:      HandlerBulkDelete,
	}
}

func defaultHandlers() map[string]ActionFunc {
	return map[string]ActionFunc{
		HandlerLoad:            listAction,
		HandlerCreate:          createAction,
		HandlerDoCreate:        createAction,
		HandlerView:            viewAction,
		HandlerEdit:            editAction,
		HandlerDoEdit:          editAction,
		HandlerDelete:          deleteAction,
		HandlerImport:          importAction,
		HandlerExport:          exportAction,
		HandlerBulkEdit:        bulkEditAction,
		HandlerBulkEditPreview: bulkEditPreviewAction,
		HandlerDoBulkEdit:      doBulkEditAction,
		HandlerBulkDelete:      bulkDeleteAction,
	}
}

// RegisterAction maps an external action name to a handler name.
// A later registration for the same name wins.
func (r *Resource) RegisterAction(external, handler string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[external] = handler
}

// HandleFunc registers a handler under name.
func (r *Resource) HandleFunc(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Actions returns a copy of the action registry.
func (r *Resource) Actions() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.actions)
}

// Resolve derives the action of req. It is computed from the request on
// each call and never cached.
func (r *Resource) Resolve(req Request) Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := Action{ItemID: req.Params.ID}
	segment := req.Params.Action

	switch handler, ok := r.actions[segment]; {
	case segment == "":
		a.Name = ActionList
	case ok:
		a.Name, a.Handler = segment, handler
		return a
	default:
		a.Name, a.ItemID = ActionView, req.ItemID()
	}
	a.Handler = r.actions[a.Name]
	return a
}

func (r *Resource) handler(name string) ActionFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}
