// Package pagination computes page navigation for list views.
package pagination

import (
	"fmt"
	"math"
)

// Pagination is the navigation state of one page of a list.
type Pagination struct {
	// FirstPage is 1 when the current page is far enough from the start
	// to warrant a "first" link, otherwise 0.
	FirstPage int `json:"first_page,omitempty"`
	// LastPage is TotalPages when the current page is far enough from the
	// end to warrant a "last" link, otherwise 0.
	LastPage      int    `json:"last_page,omitempty"`
	CounterString string `json:"counter_string"`
	PageRange     []int  `json:"page_range"`
	CurrentPage   int    `json:"current_page"`
	PageSize      int    `json:"page_size"`
	TotalItems    int    `json:"total_items"`
	TotalPages    int    `json:"total_pages"`
}

// window is how many pages are shown on each side of the current one.
const window = 2

// Compute builds the pagination for the given page. Current page and page
// size below 1 are treated as 1; a negative total is treated as 0. Item
// positions saturate at math.MaxInt instead of wrapping.
func Compute(current, pageSize, totalItems int) Pagination {
	current = max(current, 1)
	pageSize = max(pageSize, 1)
	totalItems = max(totalItems, 0)

	totalPages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		totalPages++
	}

	p := Pagination{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		PageRange:   []int{},
	}

	first, last := max(1, current-window), totalPages
	if current <= totalPages-window {
		last = current + window
	}
	for i := range max(last-first+1, 0) {
		p.PageRange = append(p.PageRange, first+i)
	}

	if current > window+1 {
		p.FirstPage = 1
	}
	if current < totalPages-window {
		p.LastPage = totalPages
	}

	start := mulSat(pageSize, current-1)
	if start < math.MaxInt {
		start++
	}
	end := min(mulSat(pageSize, current), totalItems)
	if start != 0 || totalItems != 0 {
		p.CounterString = fmt.Sprintf("Showing %d to %d of %d entries", start, end, totalItems)
	}

	return p
}

// Offset is the number of items preceding the current page.
func (p Pagination) Offset() int {
	return mulSat(max(p.CurrentPage-1, 0), max(p.PageSize, 0))
}

// Limit is the maximum number of items on the page.
func (p Pagination) Limit() int {
	return p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// mulSat multiplies two non-negative ints, saturating at math.MaxInt.
func mulSat(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}
