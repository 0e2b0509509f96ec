package crud

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/dmitrymomot/scaffold/pkg/bulk"
	"github.com/dmitrymomot/scaffold/pkg/excel"
	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func importAction(ctx context.Context, c *Controller) error {
	if c.req.IsGet() {
		c.Set("actionUrl", c.ActionURL(ActionImport, nil))
		c.Render(c.res.templates.Import)
		return nil
	}

	f, ok := c.req.Files[FieldFile]
	if !ok || f.Open == nil {
		c.fail(ctx, msgImportFailed, ErrNoFile)
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		c.fail(ctx, msgImportFailed, err)
		return nil
	}
	defer rc.Close()

	rows, err := excel.ReadFirstSheet(rc)
	if err != nil {
		c.fail(ctx, msgImportFailed, err)
		return nil
	}

	result := bulk.Result{Items: make([]bulk.ItemResult, len(rows))}
	bulk.Each(ctx, len(rows), c.res.policy.Concurrency, func(ctx context.Context, i int) {
		id, err := c.importRow(ctx, rows[i])
		result.Items[i] = bulk.ItemResult{ID: id, Err: err}
	})
	c.observeBulk("import", result)

	c.flash.Add(msgImported, flash.Success)
	resp := Redirect(c.ActionURL(ActionList, nil))
	resp.Bulk = &result
	c.Respond(resp)
	return nil
}

// importRow updates the record named by the row id or inserts the row as a
// new record. Failures are flashed and returned.
func (c *Controller) importRow(ctx context.Context, row record.Record) (string, error) {
	store := c.res.store
	id := row.ID()

	var existing record.Record
	if id != "" {
		var err error
		if existing, err = store.FindByID(ctx, id); err != nil {
			return id, c.importFailed(ctx, id, err)
		}
	}

	item := existing
	if item != nil {
		item.Merge(row)
	} else {
		item = row.Clone()
		item.Delete(record.FieldID)
	}
	item[record.FieldLastModifiedBy] = c.req.Principal

	if err := c.validate(ctx, item); err != nil {
		if verr, ok := record.AsValidationError(err); ok {
			c.flash.AddMany(verr.Messages(), flash.Error)
			return id, err
		}
		return id, c.importFailed(ctx, id, err)
	}

	var err error
	if existing != nil {
		_, err = store.Save(ctx, item)
	} else {
		var saved record.Record
		saved, err = store.Insert(ctx, item)
		id = saved.ID()
	}
	if err != nil {
		return id, c.importFailed(ctx, id, err)
	}
	return id, nil
}

func (c *Controller) importFailed(ctx context.Context, id string, err error) error {
	c.logger.ErrorContext(ctx, "crud import row failed",
		slog.String("resource", c.res.name),
		slog.String("id", id),
		slog.Any("error", err))
	c.flash.Add(msgSaveFailed+err.Error(), flash.Error)
	return err
}

func exportAction(ctx context.Context, c *Controller) error {
	res := c.res
	items, err := res.store.Fetch(ctx, record.FetchOptions{
		Predicate: query.Compile(c.FilterSpec(ctx)),
		Limit:     res.policy.BulkCap,
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, excel.DefaultSheet, c.exportColumns(), items); err != nil {
		return err
	}
	body := buf.Bytes()
	filename := res.store.Collection() + "_export.xlsx"

	if res.archiver != nil {
		if err := res.archiver(ctx, filename, excel.ContentType, body); err != nil {
			c.logger.WarnContext(ctx, "crud export archive failed",
				slog.String("resource", res.name),
				slog.Any("error", err))
		}
	}

	c.Respond(Download(filename, excel.ContentType, body))
	return nil
}

func (c *Controller) exportColumns() []excel.Column {
	fields := c.res.policy.ExportFields
	if len(fields) == 0 {
		return excel.Columns(c.res.policy.Fields...)
	}
	cols := make([]excel.Column, len(fields))
	for i, f := range fields {
		header := f.Column
		if header == "" {
			header = excel.Label(f.Field)
		}
		cols[i] = excel.Column{Field: f.Field, Header: header}
	}
	return cols
}
