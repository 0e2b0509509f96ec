package crud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/cache"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/pagination"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// API paging limits.
const (
	DefaultAPILimit = 10
	MaxAPILimit     = 100
)

// API request parameters.
const (
	ParamAPIKey  = "api_key"
	ParamLimit   = "limit"
	HeaderAPIKey = "X-API-Key"
)

// API error replies.
const (
	msgNoAPIKey      = "No API key provided"
	msgInvalidAPIKey = "Invalid or non-active API key!"
	msgInternal      = "Internal error"
	msgNotFound      = "Not found"
)

const apiKeyCachePrefix = "apikey:"

// APIKeyValidator reports whether key is a known, active API key.
type APIKeyValidator interface {
	Authenticate(ctx context.Context, key string) (bool, error)
}

// APIKeyValidatorFunc adapts a function to APIKeyValidator.
type APIKeyValidatorFunc func(ctx context.Context, key string) (bool, error)

func (f APIKeyValidatorFunc) Authenticate(ctx context.Context, key string) (bool, error) {
	return f(ctx, key)
}

// StoreKeys authenticates keys kept as records with a "key" field and an
// "active" flag.
func StoreKeys(store record.Store) APIKeyValidator {
	return APIKeyValidatorFunc(func(ctx context.Context, key string) (bool, error) {
		n, err := store.Count(ctx, query.And{
			query.Eq{Field: "key", Value: key},
			query.Eq{Field: "active", Value: "true"},
		})
		if err != nil {
			return false, err
		}
		return n > 0, nil
	})
}

// CachedKeys memoises the outcome of v for ttl. Keys are hashed before they
// reach the cache.
func CachedKeys(v APIKeyValidator, c cache.Cache[bool], ttl time.Duration) APIKeyValidator {
	return APIKeyValidatorFunc(func(ctx context.Context, key string) (bool, error) {
		sum := sha256.Sum256([]byte(key))
		return cache.GetOrSet(ctx, c, apiKeyCachePrefix+hex.EncodeToString(sum[:]),
			func(ctx context.Context) (bool, time.Duration, error) {
				ok, err := v.Authenticate(ctx, key)
				return ok, ttl, err
			})
	})
}

// APIResource serves a collection as read-only JSON.
type APIResource struct {
	store          record.Store
	keys           APIKeyValidator
	logger         *slog.Logger
	responseFields []string
	populate       []string
}

// APIOption configures an APIResource.
type APIOption func(*APIResource)

// WithResponseFields limits replies and filters to fields.
func WithResponseFields(fields ...string) APIOption {
	return func(a *APIResource) {
		a.responseFields = fields
	}
}

// WithAPIPopulate resolves reference fields in replies.
func WithAPIPopulate(fields ...string) APIOption {
	return func(a *APIResource) {
		a.populate = fields
	}
}

// WithAPILogger sets the logger.
func WithAPILogger(l *slog.Logger) APIOption {
	return func(a *APIResource) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAPIResource creates an API resource. Every request must carry a key
// accepted by keys.
func NewAPIResource(store record.Store, keys APIKeyValidator, opts ...APIOption) (*APIResource, error) {
	if store == nil || keys == nil {
		return nil, ErrInvalidResource
	}
	a := &APIResource{
		store:  store,
		keys:   keys,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Handle authenticates req and replies with one item when the id param is
// set, otherwise with a page of items.
func (a *APIResource) Handle(ctx context.Context, req Request) Response {
	if resp, ok := a.authenticate(ctx, req); !ok {
		return resp
	}
	if req.Params.ID != "" {
		return a.item(ctx, req.Params.ID)
	}
	return a.list(ctx, req)
}

func (a *APIResource) authenticate(ctx context.Context, req Request) (Response, bool) {
	key := req.Query.Get(ParamAPIKey)
	if key == "" && req.Header != nil {
		key = req.Header.Get(HeaderAPIKey)
	}
	if key == "" {
		return apiError(http.StatusUnauthorized, msgNoAPIKey), false
	}

	ok, err := a.keys.Authenticate(ctx, key)
	if err != nil {
		a.logger.ErrorContext(ctx, "api key check failed", slog.Any("error", err))
		return apiError(http.StatusInternalServerError, msgInternal), false
	}
	if !ok {
		return apiError(http.StatusUnauthorized, msgInvalidAPIKey), false
	}
	return Response{}, true
}

func (a *APIResource) item(ctx context.Context, id string) Response {
	item, err := a.store.FindByIDAndPopulate(ctx, id, a.populate)
	switch {
	case errors.Is(err, record.ErrNotFound) || (err == nil && item == nil):
		return apiError(http.StatusNotFound, msgNotFound)
	case err != nil:
		a.logger.ErrorContext(ctx, "api item load failed",
			slog.String("collection", a.store.Collection()),
			slog.String("id", id),
			slog.Any("error", err))
		return apiError(http.StatusInternalServerError, msgInternal)
	}
	return JSON(http.StatusOK, a.refine(item))
}

func (a *APIResource) list(ctx context.Context, req Request) Response {
	current, limit := apiPage(req)
	pred := query.Compile(query.FilterSpec{Custom: a.filters(req)})

	total, err := a.store.Count(ctx, pred)
	if err != nil {
		return a.internal(ctx, err)
	}
	page := pagination.Compute(current, limit, total)
	items, err := a.store.Fetch(ctx, record.FetchOptions{
		Predicate: pred,
		Populate:  a.populate,
		Offset:    page.Offset(),
		Limit:     page.Limit(),
	})
	if err != nil {
		return a.internal(ctx, err)
	}

	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = a.refine(it)
	}
	return JSON(http.StatusOK, map[string]any{
		"items":      out,
		"pagination": page,
	})
}

// filters matches each response field named by a filter[<field>] param.
func (a *APIResource) filters(req Request) query.Predicate {
	var terms query.And
	for _, f := range a.responseFields {
		v := req.Query.Get("filter[" + f + "]")
		if v == "" {
			continue
		}
		terms = append(terms, query.Contains{Field: f, Value: v})
	}
	if len(terms) == 0 {
		return nil
	}
	return terms
}

func (a *APIResource) refine(r record.Record) map[string]any {
	if len(a.responseFields) == 0 {
		return r
	}
	out := make(map[string]any, len(a.responseFields))
	for _, f := range a.responseFields {
		v, _ := r.Get(f)
		out[f] = v
	}
	return out
}

func (a *APIResource) internal(ctx context.Context, err error) Response {
	a.logger.ErrorContext(ctx, "api list failed",
		slog.String("collection", a.store.Collection()),
		slog.Any("error", err))
	return apiError(http.StatusInternalServerError, msgInternal)
}

// apiPage reads page and limit. Limit defaults to DefaultAPILimit, is capped
// at MaxAPILimit and raised to 1.
func apiPage(req Request) (page, limit int) {
	page, err := strconv.Atoi(req.Query.Get(query.ParamPage))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(req.Query.Get(ParamLimit))
	if err != nil {
		return page, DefaultAPILimit
	}
	return page, min(max(limit, 1), MaxAPILimit)
}

func apiError(status int, msg string) Response {
	return JSON(status, map[string]string{"error": msg})
}
