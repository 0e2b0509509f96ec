package query_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec query.FilterSpec
		want query.Predicate
	}{
		{
			name: "empty spec matches all",
			spec: query.FilterSpec{},
			want: query.MatchAll{},
		},
		{
			name: "search with empty value is ignored",
			spec: query.FilterSpec{Search: &query.Search{Fields: []string{"title"}}},
			want: query.MatchAll{},
		},
		{
			name: "single search field is unwrapped",
			spec: query.FilterSpec{Search: &query.Search{Fields: []string{"title"}, Value: "go"}},
			want: query.Contains{Field: "title", Value: "go"},
		},
		{
			name: "multi field search is an or",
			spec: query.FilterSpec{Search: &query.Search{Fields: []string{"title", "body"}, Value: "go"}},
			want: query.Or{
				query.Contains{Field: "title", Value: "go"},
				query.Contains{Field: "body", Value: "go"},
			},
		},
		{
			name: "scalar field match",
			spec: query.FilterSpec{InField: []query.FieldMatch{query.Value("status", "draft")}},
			want: query.Eq{Field: "status", Value: "draft"},
		},
		{
			name: "multi value field match",
			spec: query.FilterSpec{InField: []query.FieldMatch{query.Values("status", "draft", "published")}},
			want: query.In{Field: "status", Values: []any{"draft", "published"}},
		},
		{
			name: "parts are combined in fixed order",
			spec: query.FilterSpec{
				Custom:   query.Eq{Field: "archived", Value: false},
				InField:  []query.FieldMatch{query.Value("status", "draft")},
				Relation: []query.FieldMatch{query.Value("author", "u1")},
				Search:   &query.Search{Fields: []string{"title"}, Value: "go"},
			},
			want: query.And{
				query.Contains{Field: "title", Value: "go"},
				query.Eq{Field: "author", Value: "u1"},
				query.Eq{Field: "status", Value: "draft"},
				query.Eq{Field: "archived", Value: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := query.Compile(tt.spec)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff(query.Predicate(query.MatchAll{}), query.AllOf(query.MatchAll{}, nil)); diff != "" {
		t.Errorf("AllOf() mismatch (-want +got):\n%s", diff)
	}

	eq := query.Eq{Field: "a", Value: "1"}
	if diff := cmp.Diff(query.Predicate(eq), query.AllOf(query.MatchAll{}, eq)); diff != "" {
		t.Errorf("AllOf() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterSpecIsEmpty(t *testing.T) {
	t.Parallel()

	if !(query.FilterSpec{}).IsEmpty() {
		t.Error("zero FilterSpec should be empty")
	}
	if (query.FilterSpec{InField: []query.FieldMatch{query.Value("a", "b")}}).IsEmpty() {
		t.Error("FilterSpec with field match should not be empty")
	}
}
