package record

import (
	"context"
	"iter"

	"github.com/dmitrymomot/scaffold/pkg/query"
)

// FetchOptions selects one page of a collection.
// A Limit of 0 means no limit.
type FetchOptions struct {
	Predicate query.Predicate
	Sort      query.SortSpec
	Populate  []string
	Offset    int
	Limit     int
}

// Store persists the records of one collection.
//
// FindByID, FindByIDAndPopulate and RemoveByID return (nil, nil) when the
// record does not exist. Count and Fetch are independent calls; a caller
// paging a list may see a total that differs from the fetched page under
// concurrent writes.
type Store interface {
	// Collection is the name of the stored collection.
	Collection() string
	FindByID(ctx context.Context, id string) (Record, error)
	FindByIDAndPopulate(ctx context.Context, id string, populate []string) (Record, error)
	FindAll(ctx context.Context, p query.Predicate) ([]Record, error)
	Count(ctx context.Context, p query.Predicate) (int, error)
	Fetch(ctx context.Context, opts FetchOptions) ([]Record, error)
	// Insert stores a new record. An id is generated when data has none.
	Insert(ctx context.Context, data Record) (Record, error)
	// Save replaces an existing record. It fails with ErrNotFound when the
	// record does not exist.
	Save(ctx context.Context, r Record) (Record, error)
	// RemoveByID deletes a record and returns it with the audit field set
	// to actor.
	RemoveByID(ctx context.Context, id, actor string) (Record, error)
	// Stream yields every matching record once. The sequence is not
	// restartable.
	Stream(ctx context.Context, p query.Predicate) iter.Seq2[Record, error]
}

// Reference declares that Field holds the id (or ids) of records in Target.
type Reference struct {
	Target Store
	Field  string
}

// populate replaces the referenced ids in r with the referenced records.
// Ids that cannot be resolved are left in place.
func populate(ctx context.Context, r Record, refs map[string]Store, fields []string) error {
	for _, field := range fields {
		target, ok := refs[field]
		if !ok {
			continue
		}
		v, ok := r.Get(field)
		if !ok {
			continue
		}

		switch val := v.(type) {
		case []any:
			out := make([]any, len(val))
			for i, item := range val {
				resolved, err := resolve(ctx, target, item)
				if err != nil {
					return err
				}
				out[i] = resolved
			}
			r.Set(field, out)
		default:
			resolved, err := resolve(ctx, target, val)
			if err != nil {
				return err
			}
			r.Set(field, resolved)
		}
	}
	return nil
}

func resolve(ctx context.Context, target Store, v any) (any, error) {
	id := query.Stringify(v)
	if id == "" {
		return v, nil
	}
	ref, err := target.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return v, nil
	}
	return map[string]any(ref), nil
}

// referenceIDs lists the ids held by a reference field.
func referenceIDs(r Record, field string) []string {
	v, ok := r.Get(field)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if id := refID(item); id != "" {
				out = append(out, id)
			}
		}
		return out
	case []string:
		return val
	default:
		if id := refID(val); id != "" {
			return []string{id}
		}
		return nil
	}
}

func refID(v any) string {
	if m, ok := v.(map[string]any); ok {
		return query.Stringify(m[FieldID])
	}
	return query.Stringify(v)
}
