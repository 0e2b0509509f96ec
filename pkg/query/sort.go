package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder normalises s, falling back to Asc for unknown values.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortSpec orders a list by a single field.
// An empty Field leaves the list unordered.
type SortSpec struct {
	Field string
	Order Order
}

// IsZero reports whether no ordering is requested.
func (s SortSpec) IsZero() bool {
	return s.Field == ""
}

// Desc reports whether the order is descending.
func (s SortSpec) Desc() bool {
	return ParseOrder(string(s.Order)) == Desc
}

// Sort orders docs in place by s. The sort is stable.
// Numbers compare numerically, everything else by its string form.
// Documents missing the field sort first in ascending order.
func Sort[D ~map[string]any](docs []D, s SortSpec) {
	if s.IsZero() {
		return
	}
	desc := s.Desc()
	slices.SortStableFunc(docs, func(a, b D) int {
		c := compareValues(a, b, s.Field)
		if desc {
			return -c
		}
		return c
	})
}

func compareValues[D ~map[string]any](a, b D, field string) int {
	av, aok := Lookup(a, field)
	bv, bok := Lookup(b, field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	as, bs := Stringify(av), Stringify(bv)
	if af, err := strconv.ParseFloat(as, 64); err == nil {
		if bf, err := strconv.ParseFloat(bs, 64); err == nil {
			return cmp.Compare(af, bf)
		}
	}
	return strings.Compare(as, bs)
}
