package bulk

import "strings"

// Coerce converts the form strings "true" and "false" to booleans and
// returns every other value unchanged.
func Coerce(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.TrimSpace(s) {
	case "true":
		return true
	case "false":
		return false
	default:
		return s
	}
}
