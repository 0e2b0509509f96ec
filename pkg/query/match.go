package query

import (
	"reflect"
	"strings"
)

// referenceKeys are checked, in order, when a matched value is a populated
// reference rather than a bare id.
var referenceKeys = []string{"id", "_id"}

// Match evaluates p against doc.
//
// Values are compared as strings. A slice field matches when any element
// matches, and a map field (a populated reference) is compared by its id.
func Match(p Predicate, doc map[string]any) bool {
	switch pred := p.(type) {
	case nil, MatchAll:
		return true
	case And:
		for _, term := range pred {
			if !Match(term, doc) {
				return false
			}
		}
		return true
	case Or:
		for _, term := range pred {
			if Match(term, doc) {
				return true
			}
		}
		return false
	case Eq:
		want := Stringify(pred.Value)
		return anyValue(doc, pred.Field, func(s string) bool { return s == want })
	case In:
		set := make(map[string]struct{}, len(pred.Values))
		for _, v := range pred.Values {
			set[Stringify(v)] = struct{}{}
		}
		return anyValue(doc, pred.Field, func(s string) bool {
			_, ok := set[s]
			return ok
		})
	case Contains:
		needle := strings.ToLower(pred.Value)
		return anyValue(doc, pred.Field, func(s string) bool {
			return strings.Contains(strings.ToLower(s), needle)
		})
	case Func:
		if pred.Match == nil {
			return false
		}
		return pred.Match(doc)
	default:
		return false
	}
}

func anyValue(doc map[string]any, field string, fn func(string) bool) bool {
	v, ok := Lookup(doc, field)
	if !ok {
		return false
	}
	return eachScalar(v, fn)
}

func eachScalar(v any, fn func(string) bool) bool {
	if v == nil {
		return false
	}
	if m, ok := asMap(v); ok {
		for _, key := range referenceKeys {
			if id, ok := m[key]; ok {
				return fn(Stringify(id))
			}
		}
		return false
	}

	switch s := v.(type) {
	case string:
		return fn(s)
	case []any:
		for _, item := range s {
			if eachScalar(item, fn) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range s {
			if fn(item) {
				return true
			}
		}
		return false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			if eachScalar(rv.Index(i).Interface(), fn) {
				return true
			}
		}
		return false
	}
	return fn(Stringify(v))
}
