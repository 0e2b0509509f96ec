package query

import "github.com/Masterminds/squirrel"

// Predicate is a boolean condition over a document.
// The concrete node types are MatchAll, And, Or, Eq, In, Contains and Func.
type Predicate interface {
	isPredicate()
}

// MatchAll matches every document.
type MatchAll struct{}

// And matches when every term matches.
type And []Predicate

// Or matches when at least one term matches.
type Or []Predicate

// Eq matches when the field equals Value.
type Eq struct {
	Value any
	Field string
}

// In matches when the field equals one of Values.
type In struct {
	Field  string
	Values []any
}

// Contains matches when the field contains Value, ignoring case.
type Contains struct {
	Field string
	Value string
}

// Func is a caller-supplied predicate.
// Match is used by in-memory stores, SQL by the PostgreSQL store.
// Either may be nil when the predicate is only meant for one backend.
type Func struct {
	Match func(doc map[string]any) bool
	SQL   squirrel.Sqlizer
	Name  string
}

func (MatchAll) isPredicate() {}
func (And) isPredicate()      {}
func (Or) isPredicate()       {}
func (Eq) isPredicate()       {}
func (In) isPredicate()       {}
func (Contains) isPredicate() {}
func (Func) isPredicate()     {}

// IsMatchAll reports whether p matches everything.
func IsMatchAll(p Predicate) bool {
	if p == nil {
		return true
	}
	_, ok := p.(MatchAll)
	return ok
}
