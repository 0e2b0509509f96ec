package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Query string keys of the list contract.
const (
	ParamPage         = "page"
	ParamSearch       = "filter[search]"
	ParamPageSize     = "filter[pageSize]"
	ParamSortingField = "filter[sortingField]"
	ParamSortingOrder = "filter[sortingOrder]"
)

// DefaultPageSize is used when neither the request nor the cached state
// carries a page size.
const DefaultPageSize = 10

// MaxPageSize bounds the page size a request or cached state can ask for.
const MaxPageSize = 1000

var reservedFilterKeys = map[string]struct{}{
	"search":       {},
	"pageSize":     {},
	"sortingField": {},
	"sortingOrder": {},
}

// ListState is the filter state of a list view. Controllers keep it per base
// URL so that navigation back to a list restores the previous view.
type ListState struct {
	Sort     SortSpec `json:"sort"`
	Search   string   `json:"search,omitempty"`
	Page     int      `json:"page,omitempty"`
	PageSize int      `json:"page_size,omitempty"`
}

// CurrentPage returns the page, defaulting to 1.
func (s ListState) CurrentPage() int {
	if s.Page < 1 {
		return 1
	}
	return s.Page
}

// Size returns the page size, defaulting to DefaultPageSize and capped at
// MaxPageSize.
func (s ListState) Size() int {
	if s.PageSize < 1 {
		return DefaultPageSize
	}
	return min(s.PageSize, MaxPageSize)
}

// Merge folds a list request into the state.
//
// The route page replaces the cached one when present. When the query
// carries any filter key the search value is replaced (an empty value clears
// it); the page size is replaced when it parses, capped at MaxPageSize;
// sorting is replaced only when both field and order are present.
func (s ListState) Merge(q url.Values, routePage string) ListState {
	if n, err := strconv.Atoi(routePage); err == nil && n > 0 {
		s.Page = n
	}
	if !hasFilter(q) {
		return s
	}

	s.Search = q.Get(ParamSearch)
	if n, err := strconv.Atoi(q.Get(ParamPageSize)); err == nil && n > 0 {
		s.PageSize = min(n, MaxPageSize)
	}
	field, order := q.Get(ParamSortingField), q.Get(ParamSortingOrder)
	if field != "" && order != "" {
		s.Sort = SortSpec{Field: field, Order: ParseOrder(order)}
	}
	return s
}

// QueryString renders the state as a query string, including the leading
// "?", or an empty string when nothing is set. The page is not included.
func (s ListState) QueryString() string {
	parts := make([]string, 0, 4)
	if s.Search != "" {
		parts = append(parts, ParamSearch+"="+url.QueryEscape(s.Search))
	}
	if s.PageSize > 0 {
		parts = append(parts, ParamPageSize+"="+strconv.Itoa(s.PageSize))
	}
	if !s.Sort.IsZero() {
		parts = append(parts,
			ParamSortingField+"="+url.QueryEscape(s.Sort.Field),
			ParamSortingOrder+"="+url.QueryEscape(string(ParseOrder(string(s.Sort.Order)))),
		)
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// ParseListQuery reads a list state from q alone. The page comes from the
// "page" query key.
func ParseListQuery(q url.Values) ListState {
	return ListState{}.Merge(q, q.Get(ParamPage))
}

// ParseFieldFilters reads filter[<field>] keys for the allowed fields.
// A key given once yields an equality match, a key given several times
// (or as filter[<field>][]) yields a membership match. Empty values are
// ignored.
func ParseFieldFilters(q url.Values, fields []string) []FieldMatch {
	var out []FieldMatch
	for _, field := range fields {
		if _, reserved := reservedFilterKeys[field]; reserved {
			continue
		}
		key := "filter[" + field + "]"
		values := nonEmpty(q[key])
		multi := nonEmpty(q[key+"[]"])

		switch {
		case len(multi) > 0:
			out = append(out, Values(field, append(values, multi...)...))
		case len(values) > 1:
			out = append(out, Values(field, values...))
		case len(values) == 1:
			out = append(out, Value(field, values[0]))
		}
	}
	return out
}

func hasFilter(q url.Values) bool {
	for key := range q {
		if strings.HasPrefix(key, "filter[") {
			return true
		}
	}
	return false
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
