package query

import "strings"

// Compile turns a FilterSpec into a predicate.
//
// Partial predicates are built in a fixed order: search, relations, field
// matches, custom. They are combined with AND; no partials yield MatchAll and
// a single partial is returned unwrapped.
func Compile(spec FilterSpec) Predicate {
	var parts []Predicate

	if spec.Search.active() {
		parts = append(parts, compileSearch(spec.Search))
	}
	for _, m := range spec.Relation {
		parts = append(parts, compileMatch(m))
	}
	for _, m := range spec.InField {
		parts = append(parts, compileMatch(m))
	}
	if spec.Custom != nil {
		parts = append(parts, spec.Custom)
	}

	return AllOf(parts...)
}

// AllOf combines predicates with AND, dropping MatchAll terms.
func AllOf(parts ...Predicate) Predicate {
	terms := make([]Predicate, 0, len(parts))
	for _, p := range parts {
		if IsMatchAll(p) {
			continue
		}
		terms = append(terms, p)
	}

	switch len(terms) {
	case 0:
		return MatchAll{}
	case 1:
		return terms[0]
	default:
		return And(terms)
	}
}

func compileSearch(s *Search) Predicate {
	value := strings.TrimSpace(s.Value)
	if len(s.Fields) == 1 {
		return Contains{Field: s.Fields[0], Value: value}
	}
	or := make(Or, 0, len(s.Fields))
	for _, f := range s.Fields {
		or = append(or, Contains{Field: f, Value: value})
	}
	return or
}

func compileMatch(m FieldMatch) Predicate {
	if !m.IsMulti() {
		return Eq{Field: m.Field, Value: m.Value}
	}
	values := make([]any, len(m.Values))
	for i, v := range m.Values {
		values[i] = v
	}
	return In{Field: m.Field, Values: values}
}
