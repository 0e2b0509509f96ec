// Package bulk applies one change to many records with bounded concurrency.
//
// Every item is attempted. Individual failures are logged and reported in
// the [Result]; they never stop the batch, and Apply returns only after every
// item has settled.
package bulk

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// Defaults.
const (
	DefaultConcurrency = 5
	DefaultCap         = 10000
)

var ErrNoPatches = errors.New("bulk: no patches")

// Patch assigns Value at a dotted Path.
type Patch struct {
	Value any
	Path  string
}

// Options configures Apply.
type Options struct {
	Predicate   query.Predicate
	Logger      *slog.Logger
	Sort        query.SortSpec
	Actor       string
	Patches     []Patch
	Concurrency int
	Cap         int
}

// ItemResult is the outcome for one record.
type ItemResult struct {
	Err error
	ID  string
}

// Result holds per-item outcomes in input order.
type Result struct {
	Items []ItemResult
}

// Succeeded counts items without an error.
func (r Result) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the items that failed.
func (r Result) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Apply fetches up to Cap records matching the predicate, applies every
// patch to each and saves them one by one. The error is non-nil only when
// the records could not be fetched.
func Apply(ctx context.Context, store record.Store, opts Options) (Result, error) {
	if len(opts.Patches) == 0 {
		return Result{}, ErrNoPatches
	}
	limit := opts.Cap
	if limit <= 0 {
		limit = DefaultCap
	}

	items, err := store.Fetch(ctx, record.FetchOptions{
		Predicate: opts.Predicate,
		Sort:      opts.Sort,
		Limit:     limit,
	})
	if err != nil {
		return Result{}, err
	}

	log := loggerOr(opts.Logger)
	res := Result{Items: make([]ItemResult, len(items))}

	Each(ctx, len(items), opts.Concurrency, func(ctx context.Context, i int) {
		r := items[i]
		for _, p := range opts.Patches {
			r.Set(p.Path, p.Value)
		}
		if opts.Actor != "" {
			r[record.FieldLastModifiedBy] = opts.Actor
		}

		_, err := store.Save(ctx, r)
		res.Items[i] = ItemResult{ID: r.ID(), Err: err}
		if err != nil {
			log.ErrorContext(ctx, "bulk update item failed",
				slog.String("collection", store.Collection()),
				slog.String("id", r.ID()),
				slog.Any("error", err))
		}
	})

	return res, nil
}

// RemoveEach removes the given ids with the same barrier semantics as Apply.
// An id that does not exist is reported with record.ErrNotFound.
func RemoveEach(ctx context.Context, store record.Store, ids []string, actor string, concurrency int, l *slog.Logger) Result {
	log := loggerOr(l)
	res := Result{Items: make([]ItemResult, len(ids))}

	Each(ctx, len(ids), concurrency, func(ctx context.Context, i int) {
		id := ids[i]
		removed, err := store.RemoveByID(ctx, id, actor)
		if err == nil && removed == nil {
			err = record.ErrNotFound
		}
		res.Items[i] = ItemResult{ID: id, Err: err}
		if err != nil {
			log.ErrorContext(ctx, "bulk remove item failed",
				slog.String("collection", store.Collection()),
				slog.String("id", id),
				slog.Any("error", err))
		}
	})

	return res
}

// Each runs fn for every index with at most concurrency calls in flight and
// returns once all calls have finished.
func Each(ctx context.Context, n, concurrency int, fn func(ctx context.Context, i int)) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	// Items never cancel each other, so the group context is not used.
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range n {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return logger.NewNope()
	}
	return l
}
