package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"title":  "Learning Go",
		"status": "draft",
		"views":  42,
		"tags":   []any{"lang", "backend"},
		"author": map[string]any{"id": "u1", "name": "Ann"},
		"meta":   map[string]any{"lang": "en"},
		"ok":     true,
	}

	tests := []struct {
		name string
		p    query.Predicate
		want bool
	}{
		{"match all", query.MatchAll{}, true},
		{"nil predicate", nil, true},
		{"eq string", query.Eq{Field: "status", Value: "draft"}, true},
		{"eq mismatch", query.Eq{Field: "status", Value: "published"}, false},
		{"eq stringified int", query.Eq{Field: "views", Value: "42"}, true},
		{"eq bool", query.Eq{Field: "ok", Value: true}, true},
		{"eq missing field", query.Eq{Field: "missing", Value: ""}, false},
		{"eq slice element", query.Eq{Field: "tags", Value: "backend"}, true},
		{"eq populated reference", query.Eq{Field: "author", Value: "u1"}, true},
		{"eq nested path", query.Eq{Field: "meta.lang", Value: "en"}, true},
		{"in", query.In{Field: "status", Values: []any{"published", "draft"}}, true},
		{"in empty", query.In{Field: "status"}, false},
		{"contains case insensitive", query.Contains{Field: "title", Value: "go"}, true},
		{"contains nested", query.Contains{Field: "author.name", Value: "an"}, true},
		{"and", query.And{query.Eq{Field: "status", Value: "draft"}, query.Contains{Field: "title", Value: "rust"}}, false},
		{"or", query.Or{query.Eq{Field: "status", Value: "x"}, query.Contains{Field: "title", Value: "LEARN"}}, true},
		{"empty or", query.Or{}, false},
		{"func", query.Func{Match: func(d map[string]any) bool { return d["views"] == 42 }}, true},
		{"func without matcher", query.Func{Name: "sql only"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, query.Match(tt.p, doc))
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	type named map[string]any
	doc := map[string]any{"a": named{"b": map[string]any{"c": 1}}, "s": "x"}

	v, ok := query.Lookup(doc, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = query.Lookup(doc, "s.x")
	assert.False(t, ok)

	_, ok = query.Lookup(doc, "")
	assert.False(t, ok)
}
