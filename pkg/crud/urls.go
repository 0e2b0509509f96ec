package crud

import (
	"net/url"
	"strconv"

	"github.com/dmitrymomot/scaffold/pkg/record"
)

// ActionURL builds the URL of action. Item actions need item; a nil item
// falls back to the list URL.
func (r *Resource) ActionURL(action string, item record.Record) string {
	switch action {
	case ActionCreate, ActionImport, ActionExport, ActionBulkEdit,
		ActionBulkEditPreview, ActionDoBulkEdit, ActionBulkDelete:
		return r.baseURL + "/" + action
	case ActionEdit, ActionDoEdit, ActionDelete:
		if id := itemID(item); id != "" {
			return r.baseURL + "/" + id + "/" + action
		}
	case ActionView:
		if id := itemID(item); id != "" {
			return r.baseURL + "/" + id
		}
	}
	return r.baseURL
}

// ActionURL builds a URL of the controller's resource.
func (c *Controller) ActionURL(action string, item record.Record) string {
	return c.res.ActionURL(action, item)
}

// FilteredListURL is the list URL carrying the cached page and filters.
func (c *Controller) FilteredListURL() string {
	u := c.res.baseURL
	if c.list.Page > 0 {
		u += "/page/" + strconv.Itoa(c.list.Page)
	}
	return u + c.list.QueryString()
}

func itemID(item record.Record) string {
	if item == nil {
		return ""
	}
	id := item.ID()
	if id == "" {
		return ""
	}
	return url.PathEscape(id)
}
