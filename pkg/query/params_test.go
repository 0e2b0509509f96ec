package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

func TestListStateMerge(t *testing.T) {
	t.Parallel()

	cached := query.ListState{
		Page:     3,
		Search:   "old",
		PageSize: 25,
		Sort:     query.SortSpec{Field: "title", Order: query.Asc},
	}

	t.Run("no filter keeps cached state", func(t *testing.T) {
		t.Parallel()
		got := cached.Merge(url.Values{}, "")
		assert.Equal(t, cached, got)
	})

	t.Run("route page replaces cached page", func(t *testing.T) {
		t.Parallel()
		got := cached.Merge(url.Values{}, "5")
		assert.Equal(t, 5, got.Page)
		assert.Equal(t, "old", got.Search)
	})

	t.Run("filter replaces search and keeps sorting without both keys", func(t *testing.T) {
		t.Parallel()
		q := url.Values{
			"filter[search]":       {"new", "ignored"},
			"filter[sortingField]": {"status"},
		}
		got := cached.Merge(q, "")
		assert.Equal(t, "new", got.Search)
		assert.Equal(t, 25, got.PageSize)
		assert.Equal(t, query.SortSpec{Field: "title", Order: query.Asc}, got.Sort)
	})

	t.Run("empty search clears it", func(t *testing.T) {
		t.Parallel()
		got := cached.Merge(url.Values{"filter[pageSize]": {"50"}}, "")
		assert.Empty(t, got.Search)
		assert.Equal(t, 50, got.PageSize)
	})

	t.Run("page size is capped", func(t *testing.T) {
		t.Parallel()
		got := cached.Merge(url.Values{"filter[pageSize]": {"9223372036854775807"}}, "")
		assert.Equal(t, query.MaxPageSize, got.PageSize)
		assert.Equal(t, query.MaxPageSize, got.Size())
	})

	t.Run("sorting needs field and order", func(t *testing.T) {
		t.Parallel()
		q := url.Values{"filter[sortingField]": {"status"}, "filter[sortingOrder]": {"desc"}}
		got := cached.Merge(q, "")
		assert.Equal(t, query.SortSpec{Field: "status", Order: query.Desc}, got.Sort)
	})
}

func TestListStateQueryString(t *testing.T) {
	t.Parallel()

	assert.Empty(t, query.ListState{Page: 2}.QueryString())

	s := query.ListState{
		Search:   "a b",
		PageSize: 20,
		Sort:     query.SortSpec{Field: "status", Order: query.Desc},
	}
	assert.Equal(t,
		"?filter[search]=a+b&filter[pageSize]=20&filter[sortingField]=status&filter[sortingOrder]=desc",
		s.QueryString(),
	)
}

func TestListStateDefaults(t *testing.T) {
	t.Parallel()

	var s query.ListState
	assert.Equal(t, 1, s.CurrentPage())
	assert.Equal(t, query.DefaultPageSize, s.Size())

	s.PageSize = query.MaxPageSize + 1
	assert.Equal(t, query.MaxPageSize, s.Size())
}

func TestParseListQuery(t *testing.T) {
	t.Parallel()

	got := query.ParseListQuery(url.Values{"page": {"2"}, "filter[search]": {"x"}})
	assert.Equal(t, query.ListState{Page: 2, Search: "x"}, got)
}

func TestParseFieldFilters(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"filter[status]":   {"draft", "published"},
		"filter[author]":   {"u1"},
		"filter[tags][]":   {"go"},
		"filter[empty]":    {" "},
		"filter[search]":   {"ignored"},
		"filter[unlisted]": {"x"},
	}
	got := query.ParseFieldFilters(q, []string{"status", "author", "tags", "empty", "search"})
	assert.Equal(t, []query.FieldMatch{
		query.Values("status", "draft", "published"),
		query.Value("author", "u1"),
		query.Values("tags", "go"),
	}, got)
}
