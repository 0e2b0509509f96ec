// Package query describes how a list of records is filtered, ordered and paged,
// and compiles those descriptions into a backend-agnostic predicate tree.
//
// A [FilterSpec] is compiled with [Compile]. The resulting [Predicate] can be
// evaluated in memory with [Match] or translated to a PostgreSQL JSONB
// condition with [ToSQL]:
//
//	p := query.Compile(query.FilterSpec{
//	    Search: &query.Search{Fields: []string{"title", "body"}, Value: "go"},
//	    InField: []query.FieldMatch{query.Values("status", "draft", "published")},
//	})
//
//	ok := query.Match(p, doc)
//	cond, err := query.ToSQL(p, "data")
//
// The HTTP list contract (page, filter[search], filter[pageSize],
// filter[sortingField], filter[sortingOrder], filter[<field>]) is parsed by
// [ParseListQuery] and [ParseFieldFilters].
package query
