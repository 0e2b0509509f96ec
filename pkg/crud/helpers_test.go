package crud_test

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/record"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

type fixture struct {
	res   *crud.Resource
	store *record.Memory
	sess  *session.Session
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func newFixture(t *testing.T, opts ...crud.Option) *fixture {
	t.Helper()
	store := record.NewMemory("posts", record.WithIDGenerator(sequentialIDs()))
	return newFixtureWithStore(t, store, store, opts...)
}

func newFixtureWithStore(t *testing.T, mem *record.Memory, store record.Store, opts ...crud.Option) *fixture {
	t.Helper()
	res, err := crud.NewResource("posts", "/posts", store, opts...)
	require.NoError(t, err)
	return &fixture{
		res:   res,
		store: mem,
		sess:  session.New("sid", "token", time.Now().Add(time.Hour)),
	}
}

func (f *fixture) seed(t *testing.T, items ...record.Record) []record.Record {
	t.Helper()
	out := make([]record.Record, len(items))
	for i, it := range items {
		saved, err := f.store.Insert(context.Background(), it)
		require.NoError(t, err)
		out[i] = saved
	}
	return out
}

func (f *fixture) dispatch(t *testing.T, req crud.Request) (crud.Response, *crud.Controller, error) {
	t.Helper()
	if req.Principal == "" {
		req.Principal = "user-1"
	}
	c := crud.NewController(f.res, req, crud.Env{
		Flash:   flash.New(f.sess),
		Filters: crud.NewSessionFilters(f.sess),
	})
	resp, err := c.Dispatch(context.Background())
	return resp, c, err
}

func (f *fixture) flashes() []flash.Message {
	return flash.New(f.sess).Drain()
}

func get(action, id string, q url.Values) crud.Request {
	return crud.Request{Method: "GET", Params: crud.Params{Action: action, ID: id}, Query: q}
}

func post(action, id string, form url.Values) crud.Request {
	return crud.Request{Method: "POST", Params: crud.Params{Action: action, ID: id}, Form: form}
}
