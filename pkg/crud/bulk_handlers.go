package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/scaffold/pkg/bulk"
	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/query"
)

// BulkEditValue is a bulk edit field selected on the preview screen.
type BulkEditValue struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

const checkboxSuffix = "_checkbox"

func bulkDeleteAction(ctx context.Context, c *Controller) error {
	ids := c.req.FormValues(FieldSelectedItems)
	result := bulk.RemoveEach(ctx, c.res.store, ids, c.req.Principal, c.res.policy.Concurrency, c.logger)
	failed := len(result.Failed())
	c.observeBulk("delete", result)

	if failed > 0 {
		c.flash.Add(fmt.Sprintf("%s%d of %d could not be removed.", msgDeleteFailed, failed, len(ids)), flash.Error)
	} else {
		c.flash.Add(msgBulkRemoved, flash.Success)
	}

	resp := Redirect(c.ActionURL(ActionList, nil))
	resp.Bulk = &result
	c.Respond(resp)
	return nil
}

func bulkEditAction(ctx context.Context, c *Controller) error {
	total, err := c.res.store.Count(ctx, query.Compile(c.FilterSpec(ctx)))
	if err != nil {
		return err
	}
	c.Set("baseUrl", c.res.baseURL)
	c.Set("bulkEditPreviewActionUrl", c.ActionURL(ActionBulkEditPreview, nil))
	c.Set("bulkEditFields", c.res.policy.BulkEditFields)
	c.Set("modelName", c.res.store.Collection())
	c.Set("itemsTotal", total)
	c.Render(c.res.templates.BulkEdit)
	return nil
}

func bulkEditPreviewAction(ctx context.Context, c *Controller) error {
	total, err := c.res.store.Count(ctx, query.Compile(c.FilterSpec(ctx)))
	if err != nil {
		return err
	}
	c.Set("baseUrl", c.res.baseURL)
	c.Set("bulkEditActionUrl", c.ActionURL(ActionBulkEdit, nil))
	c.Set("doBulkEditActionUrl", c.ActionURL(ActionDoBulkEdit, nil))
	c.Set("modelName", c.res.store.Collection())
	c.Set("itemsTotal", total)
	c.Set("bulk_edit_preview", c.selectedBulkFields())
	c.Render(c.res.templates.BulkEditPreview)
	return nil
}

// selectedBulkFields returns the bulk edit fields whose checkbox is on.
func (c *Controller) selectedBulkFields() []BulkEditValue {
	fields := make([]BulkEditValue, 0, len(c.res.policy.BulkEditFields))
	for _, f := range c.res.policy.BulkEditFields {
		if c.req.FormValue(f.Path+checkboxSuffix) != "on" {
			continue
		}
		fields = append(fields, BulkEditValue{
			Type:  f.Type,
			Name:  f.Name,
			Path:  f.Path,
			Value: c.req.FormValue(f.Path),
		})
	}
	return fields
}

func doBulkEditAction(ctx context.Context, c *Controller) error {
	patches := make([]bulk.Patch, 0, len(c.res.policy.BulkEditFields))
	for _, f := range c.res.policy.BulkEditFields {
		if !c.req.HasForm(f.Name) {
			continue
		}
		patches = append(patches, bulk.Patch{Path: f.Path, Value: bulk.Coerce(c.req.FormValue(f.Name))})
	}

	result, err := bulk.Apply(ctx, c.res.store, bulk.Options{
		Predicate:   query.Compile(c.FilterSpec(ctx)),
		Patches:     patches,
		Actor:       c.req.Principal,
		Concurrency: c.res.policy.Concurrency,
		Cap:         c.res.policy.BulkCap,
		Logger:      c.logger,
	})
	if err != nil && !errors.Is(err, bulk.ErrNoPatches) {
		return err
	}
	c.observeBulk("update", result)

	c.flash.Add(msgBulkUpdated, flash.Success)
	resp := Redirect(c.ActionURL(ActionList, nil))
	resp.Bulk = &result
	c.Respond(resp)
	return nil
}

func (c *Controller) observeBulk(op string, r bulk.Result) {
	if c.res.observer == nil {
		return
	}
	c.res.observer.ObserveBulk(c.res.name, op, r.Succeeded(), len(r.Failed()))
}
