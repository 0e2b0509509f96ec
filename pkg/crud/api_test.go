package crud_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/cache"
	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/pagination"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func newAPI(t *testing.T, n int) *crud.APIResource {
	t.Helper()
	ctx := context.Background()

	keys := record.NewMemory("api_keys")
	_, err := keys.Insert(ctx, record.Record{"key": "good", "active": true})
	require.NoError(t, err)
	_, err = keys.Insert(ctx, record.Record{"key": "revoked", "active": false})
	require.NoError(t, err)

	store := record.NewMemory("posts", record.WithIDGenerator(sequentialIDs()))
	for i := range n {
		_, err := store.Insert(ctx, record.Record{"title": fmt.Sprintf("post %d", i), "secret": "x"})
		require.NoError(t, err)
	}

	api, err := crud.NewAPIResource(store, crud.StoreKeys(keys), crud.WithResponseFields("id", "title"))
	require.NoError(t, err)
	return api
}

func apiRequest(q url.Values) crud.Request {
	return crud.Request{Method: "GET", Query: q}
}

func TestAPIAuthentication(t *testing.T) {
	t.Parallel()

	api := newAPI(t, 1)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    crud.Request
		status int
		body   any
	}{
		{"missing key", apiRequest(nil), http.StatusUnauthorized, map[string]string{"error": "No API key provided"}},
		{"revoked key", apiRequest(url.Values{"api_key": {"revoked"}}), http.StatusUnauthorized, map[string]string{"error": "Invalid or non-active API key!"}},
		{"unknown key", apiRequest(url.Values{"api_key": {"nope"}}), http.StatusUnauthorized, map[string]string{"error": "Invalid or non-active API key!"}},
		{"header key", crud.Request{Method: "GET", Header: http.Header{"X-Api-Key": {"good"}}}, http.StatusOK, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := api.Handle(ctx, tt.req)
			assert.Equal(t, crud.KindJSON, resp.Kind)
			assert.Equal(t, tt.status, resp.Status)
			if tt.body != nil {
				assert.Equal(t, tt.body, resp.JSON)
			}
		})
	}
}

func TestAPIListLimit(t *testing.T) {
	t.Parallel()

	api := newAPI(t, 120)
	ctx := context.Background()

	tests := []struct {
		limit string
		want  int
	}{
		{"", 10},
		{"0", 1},
		{"-5", 1},
		{"25", 25},
		{"500", 100},
		{"abc", 10},
	}
	for _, tt := range tests {
		t.Run("limit="+tt.limit, func(t *testing.T) {
			t.Parallel()
			q := url.Values{"api_key": {"good"}}
			if tt.limit != "" {
				q.Set("limit", tt.limit)
			}
			resp := api.Handle(ctx, apiRequest(q))
			require.Equal(t, http.StatusOK, resp.Status)

			body := resp.JSON.(map[string]any)
			items := body["items"].([]map[string]any)
			assert.Len(t, items, tt.want)
			assert.Equal(t, tt.want, body["pagination"].(pagination.Pagination).PageSize)
		})
	}
}

func TestAPIListRefinesAndFilters(t *testing.T) {
	t.Parallel()

	api := newAPI(t, 12)
	q := url.Values{"api_key": {"good"}, "filter[title]": {"post 1"}, "page": {"1"}}
	resp := api.Handle(context.Background(), apiRequest(q))
	require.Equal(t, http.StatusOK, resp.Status)

	body := resp.JSON.(map[string]any)
	items := body["items"].([]map[string]any)
	// post 1, post 10, post 11
	require.Len(t, items, 3)
	for _, it := range items {
		assert.NotContains(t, it, "secret")
		assert.Contains(t, it, "id")
	}
}

func TestAPIItem(t *testing.T) {
	t.Parallel()

	api := newAPI(t, 2)
	ctx := context.Background()

	req := apiRequest(url.Values{"api_key": {"good"}})
	req.Params.ID = "id-2"
	resp := api.Handle(ctx, req)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"id": "id-2", "title": "post 1"}, resp.JSON)

	req.Params.ID = "missing"
	resp = api.Handle(ctx, req)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestCachedKeys(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := crud.APIKeyValidatorFunc(func(_ context.Context, key string) (bool, error) {
		calls.Add(1)
		if key == "broken" {
			return false, errors.New("db down")
		}
		return key == "good", nil
	})
	c := cache.NewMemory[bool]()
	t.Cleanup(func() { _ = c.Close() })

	keys := crud.CachedKeys(inner, c, time.Minute)
	ctx := context.Background()

	for range 3 {
		ok, err := keys.Authenticate(ctx, "good")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.EqualValues(t, 1, calls.Load())

	_, err := keys.Authenticate(ctx, "broken")
	require.Error(t, err)
	_, err = keys.Authenticate(ctx, "broken")
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}
