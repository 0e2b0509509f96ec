package record

import (
	"maps"
	"strings"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

// Well-known fields.
const (
	FieldID             = "id"
	FieldLastModifiedBy = "last_modified_by"
)

// Record is a schemaless document. Nested documents are map[string]any.
type Record map[string]any

// ID returns the record id as a string, or "" when unset.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	return query.Stringify(r[FieldID])
}

// Get resolves a dotted path.
func (r Record) Get(path string) (any, bool) {
	return query.Lookup(r, path)
}

// String returns the value at path rendered as a string.
func (r Record) String(path string) string {
	v, _ := r.Get(path)
	return query.Stringify(v)
}

// Set assigns v at a dotted path, creating intermediate documents as needed.
// A non-document value in the way is replaced.
func (r Record) Set(path string, v any) {
	segs := strings.Split(path, ".")
	cur := map[string]any(r)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			if rec, isRec := cur[seg].(Record); isRec {
				next = rec
			} else {
				next = map[string]any{}
				cur[seg] = next
			}
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// Delete removes the value at a dotted path.
func (r Record) Delete(path string) {
	segs := strings.Split(path, ".")
	cur := map[string]any(r)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, segs[len(segs)-1])
}

// Merge copies every top-level value of src into r.
func (r Record) Merge(src map[string]any) Record {
	maps.Copy(r, src)
	return r
}

// Clone returns a deep copy of nested documents and slices.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Record:
		return Record(cloneMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// IDs returns the ids of records in order.
func IDs(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

// Missing reports which of fields are absent or empty in r.
func Missing(r Record, fields []string) []string {
	var out []string
	for _, f := range fields {
		v, ok := r.Get(f)
		if !ok || isEmpty(v) {
			out = append(out, f)
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}
