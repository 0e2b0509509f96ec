package query

import "strings"

// Search is a case-insensitive substring search across one or more fields.
// The value is trimmed before use.
type Search struct {
	Value  string
	Fields []string
}

func (s *Search) active() bool {
	return s != nil && strings.TrimSpace(s.Value) != "" && len(s.Fields) > 0
}

// FieldMatch is an equality or membership condition on a single field.
// When Values is non-nil the match is a set membership (IN), otherwise
// the field must equal Value.
type FieldMatch struct {
	Field  string
	Value  string
	Values []string
}

// Value builds a scalar equality match.
func Value(field, value string) FieldMatch {
	return FieldMatch{Field: field, Value: value}
}

// Values builds a membership match.
func Values(field string, values ...string) FieldMatch {
	if values == nil {
		values = []string{}
	}
	return FieldMatch{Field: field, Values: values}
}

// IsMulti reports whether the match is a set membership.
func (m FieldMatch) IsMulti() bool {
	return m.Values != nil
}

// FilterSpec describes which records a list contains.
// The zero value matches every record.
type FilterSpec struct {
	Search   *Search
	Custom   Predicate
	InField  []FieldMatch
	Relation []FieldMatch
}

// IsEmpty reports whether the spec carries no active condition.
func (f FilterSpec) IsEmpty() bool {
	return !f.Search.active() && len(f.InField) == 0 && len(f.Relation) == 0 && f.Custom == nil
}
