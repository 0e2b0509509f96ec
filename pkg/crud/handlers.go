package crud

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/pagination"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func listAction(ctx context.Context, c *Controller) error {
	res := c.res
	if err := c.runHook(ctx, res.hooks.OnBeforeLoadList, nil); err != nil {
		return err
	}

	current, err := strconv.Atoi(c.req.Params.Page)
	if err != nil || current < 1 {
		current = 1
	}

	pred := query.Compile(c.FilterSpec(ctx))
	total, err := res.store.Count(ctx, pred)
	if err != nil {
		return err
	}
	page := pagination.Compute(current, c.list.Size(), total)

	items, err := res.store.Fetch(ctx, record.FetchOptions{
		Predicate: pred,
		Sort:      c.list.Sort,
		Populate:  res.policy.Populate,
		Offset:    page.Offset(),
		Limit:     page.Limit(),
	})
	if err != nil {
		return err
	}

	qs := c.list.QueryString()
	c.Set("items", items)
	c.Set("pagination", page)
	c.Set("filter", c.list)
	c.Set("sorting", c.list.Sort)
	c.Set("createActionUrl", c.ActionURL(ActionCreate, nil))
	c.Set("importActionUrl", c.ActionURL(ActionImport, nil))
	c.Set("exportActionUrl", c.ActionURL(ActionExport, nil)+qs)
	c.Set("bulkEditActionUrl", c.ActionURL(ActionBulkEdit, nil)+qs)
	c.Set("bulkDeleteActionUrl", c.ActionURL(ActionBulkDelete, nil))
	c.Set("baseUrl", res.baseURL)

	if err := c.runHook(ctx, res.hooks.OnAfterLoadList, nil); err != nil {
		return err
	}
	c.Render(res.templates.List)
	return nil
}

func createAction(ctx context.Context, c *Controller) error {
	res := c.res
	c.Set("actionUrl", c.ActionURL(ActionCreate, nil))
	c.Set("cancelActionUrl", c.FilteredListURL())
	if c.req.IsGet() {
		c.Render(res.templates.Create)
		return nil
	}

	item := c.ItemFromForm(nil)
	if ok, err := c.checkValid(ctx, item, res.templates.Create); !ok {
		return err
	}
	if err := c.runHook(ctx, res.hooks.OnBeforeCreate, item); err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}

	item[record.FieldLastModifiedBy] = c.req.Principal
	c.emit(ctx, EventItemBeforeInsert, item)

	saved, err := res.store.Insert(ctx, item)
	if err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	c.item = saved
	c.logger.DebugContext(ctx, "crud item inserted", "resource", res.name, "id", saved.ID())

	c.emit(ctx, EventItemCreate, saved)
	if err := c.runHook(ctx, res.hooks.OnAfterCreate, saved); err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	if !c.Terminated() {
		c.Redirect(c.ActionURL(ActionList, nil))
	}
	return nil
}

func editAction(ctx context.Context, c *Controller) error {
	res := c.res
	c.Set("isEditMode", true)
	c.Set("actionUrl", c.ActionURL(ActionEdit, c.item))
	c.Set("item", c.item)
	c.Set("cancelActionUrl", c.ActionURL(ActionView, c.item))
	if c.req.IsGet() {
		c.Render(res.templates.Edit)
		return nil
	}

	item := c.ItemFromForm(c.item.Clone())
	if ok, err := c.checkValid(ctx, item, res.templates.Edit); !ok {
		return err
	}

	item[record.FieldLastModifiedBy] = c.req.Principal
	if err := c.runHook(ctx, res.hooks.BeforeSave, item); err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	if err := c.runHook(ctx, res.hooks.OnBeforeEdit, item); err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	c.emit(ctx, EventItemBeforeUpdate, item)

	saved, err := res.store.Save(ctx, item)
	if err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	c.item = saved

	c.emit(ctx, EventItemUpdate, saved)
	if err := c.runHook(ctx, res.hooks.OnAfterEdit, saved); err != nil {
		c.fail(ctx, msgSaveFailed, err)
		return nil
	}
	if !c.Terminated() {
		c.Redirect(c.ActionURL(ActionList, nil))
	}
	return nil
}

// checkValid validates item. On a validation failure the messages are
// flashed and template is rendered again with the submitted item.
func (c *Controller) checkValid(ctx context.Context, item record.Record, template string) (bool, error) {
	err := c.validate(ctx, item)
	if err == nil {
		return true, nil
	}
	verr, ok := record.AsValidationError(err)
	if !ok {
		return false, err
	}
	c.flash.AddMany(verr.Messages(), flash.Error)
	c.Set("item", item)
	c.Render(template)
	return false, nil
}

func viewAction(ctx context.Context, c *Controller) error {
	if !c.req.IsGet() {
		c.respond(Fail(http.StatusMethodNotAllowed, msgActionNotAllowed))
		return nil
	}
	c.Set("isViewMode", true)
	c.Set("item", c.item)
	c.Set("cancelActionUrl", c.FilteredListURL())
	c.Set("editActionUrl", c.ActionURL(ActionEdit, c.item))
	c.Render(c.res.templates.View)
	return nil
}

func deleteAction(ctx context.Context, c *Controller) error {
	removed, err := c.res.store.RemoveByID(ctx, c.Action().ItemID, c.req.Principal)
	c.emit(ctx, EventItemDelete, removed)

	switch {
	case err != nil:
		c.fail(ctx, msgDeleteFailed, err)
		return nil
	case removed == nil:
		c.flash.Add(msgDeleteNotFound, flash.Error)
	default:
		c.flash.Add(msgRemoved, flash.Success)
	}
	c.Redirect(c.ActionURL(ActionList, nil))
	return nil
}

// onItemInserted is the default ITEM_CREATE listener.
func onItemInserted(_ context.Context, c *Controller, r record.Record) {
	c.flash.Add(msgInserted, flash.Success)
	c.Redirect(c.afterSaveURL(r))
}

// onItemSaved is the default ITEM_UPDATE listener.
func onItemSaved(_ context.Context, c *Controller, r record.Record) {
	c.flash.Add(msgUpdated, flash.Success)
	c.Redirect(c.afterSaveURL(r))
}

func (c *Controller) afterSaveURL(r record.Record) string {
	switch c.req.FormValue(FieldSaveAction) {
	case SaveAndCreateAnother:
		return c.ActionURL(ActionCreate, nil)
	case SaveAndStay:
		return c.ActionURL(ActionEdit, r)
	default:
		return c.ActionURL(ActionList, nil)
	}
}
