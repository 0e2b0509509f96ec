package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

type doc map[string]any

func ids(docs []doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d["id"].(string)
	}
	return out
}

func TestSort(t *testing.T) {
	t.Parallel()

	newDocs := func() []doc {
		return []doc{
			{"id": "a", "n": 10, "name": "pear"},
			{"id": "b", "n": 9, "name": "apple"},
			{"id": "c", "name": "fig"},
			{"id": "d", "n": 10, "name": "kiwi"},
		}
	}

	t.Run("numeric ascending, missing first, stable", func(t *testing.T) {
		t.Parallel()
		docs := newDocs()
		query.Sort(docs, query.SortSpec{Field: "n", Order: query.Asc})
		assert.Equal(t, []string{"c", "b", "a", "d"}, ids(docs))
	})

	t.Run("string descending", func(t *testing.T) {
		t.Parallel()
		docs := newDocs()
		query.Sort(docs, query.SortSpec{Field: "name", Order: query.Desc})
		assert.Equal(t, []string{"a", "d", "c", "b"}, ids(docs))
	})

	t.Run("zero spec keeps order", func(t *testing.T) {
		t.Parallel()
		docs := newDocs()
		query.Sort(docs, query.SortSpec{})
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(docs))
	})
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, query.Desc, query.ParseOrder("DESC"))
	assert.Equal(t, query.Asc, query.ParseOrder("asc"))
	assert.Equal(t, query.Asc, query.ParseOrder("sideways"))
}
