package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Lookup resolves a dotted path such as "author.name" inside doc.
// It returns false when any segment is missing or is not a map.
func Lookup(doc map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var cur any = doc
	for seg := range strings.SplitSeq(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// asMap accepts map[string]any and any named map type with string keys.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Stringify renders a scalar the way filters compare it.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
