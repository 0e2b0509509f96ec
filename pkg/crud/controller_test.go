package crud_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/pagination"
	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tests := []struct {
		name    string
		params  crud.Params
		action  string
		handler string
		itemID  string
	}{
		{"bare collection", crud.Params{}, crud.ActionList, crud.HandlerLoad, ""},
		{"new", crud.Params{Action: "new"}, crud.ActionNew, crud.HandlerCreate, ""},
		{"edit", crud.Params{Action: "edit", ID: "42"}, crud.ActionEdit, crud.HandlerEdit, "42"},
		{"delete alias", crud.Params{Action: "delete", ID: "42"}, crud.ActionDelete, crud.HandlerDelete, "42"},
		{"unregistered segment", crud.Params{Action: "42"}, crud.ActionView, crud.HandlerView, "42"},
		{"export", crud.Params{Action: "export"}, crud.ActionExport, crud.HandlerExport, ""},
		{"bulk delete", crud.Params{Action: "bulkDelete"}, crud.ActionBulkDelete, crud.HandlerBulkDelete, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := f.res.Resolve(crud.Request{Params: tt.params})
			assert.Equal(t, tt.action, a.Name)
			assert.Equal(t, tt.handler, a.Handler)
			assert.Equal(t, tt.itemID, a.ItemID)
		})
	}
}

func TestRegisterActionOverrides(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.res.RegisterAction("list", crud.HandlerCreate)
	f.res.RegisterAction("list", crud.HandlerView)
	assert.Equal(t, crud.HandlerView, f.res.Actions()["list"])
}

func TestNewResourceValidation(t *testing.T) {
	t.Parallel()

	store := record.NewMemory("posts")
	_, err := crud.NewResource("", "/posts", store)
	assert.ErrorIs(t, err, crud.ErrInvalidResource)
	_, err = crud.NewResource("posts", "/", store)
	assert.ErrorIs(t, err, crud.ErrInvalidResource)
	_, err = crud.NewResource("posts", "posts/", nil)
	assert.ErrorIs(t, err, crud.ErrInvalidResource)

	res, err := crud.NewResource("posts", "posts/", store)
	require.NoError(t, err)
	assert.Equal(t, "/posts", res.BaseURL())
}

func TestList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{SearchFields: []string{"title"}}))
	f.seed(t,
		record.Record{"title": "alpha"},
		record.Record{"title": "beta"},
		record.Record{"title": "alphabet"},
	)

	q := url.Values{"filter[search]": {"alp"}, "filter[pageSize]": {"1"}}
	resp, c, err := f.dispatch(t, get("", "", q))
	require.NoError(t, err)

	assert.Equal(t, crud.KindHTML, resp.Kind)
	assert.Equal(t, "posts/list", resp.Template)
	assert.Equal(t, crud.StateRendered, c.State())

	items := resp.Data["items"].([]record.Record)
	require.Len(t, items, 1)
	assert.Equal(t, "alpha", items[0]["title"])

	page := resp.Data["pagination"].(pagination.Pagination)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	assert.Equal(t, "/posts/create", resp.Data["createActionUrl"])
	assert.Equal(t, "/posts/export?filter[search]=alp&filter[pageSize]=1", resp.Data["exportActionUrl"])
	assert.Equal(t, "/posts/bulkDelete", resp.Data["bulkDeleteActionUrl"])
	assert.Equal(t, "/posts", resp.Data["baseUrl"])
}

func TestListRestoresCachedFilter(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{SearchFields: []string{"title"}}))
	f.seed(t, record.Record{"title": "alpha"}, record.Record{"title": "beta"})

	req := get("", "", url.Values{"filter[search]": {"beta"}})
	req.Params.Page = "1"
	_, _, err := f.dispatch(t, req)
	require.NoError(t, err)

	resp, c, err := f.dispatch(t, get("", "", nil))
	require.NoError(t, err)
	items := resp.Data["items"].([]record.Record)
	require.Len(t, items, 1)
	assert.Equal(t, "beta", items[0]["title"])
	assert.Equal(t, "beta", c.ListState().Search)
	assert.Equal(t, "/posts/page/1?filter[search]=beta", c.FilteredListURL())
}

func TestListFieldFilters(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{FilterFields: []string{"status"}}))
	f.seed(t,
		record.Record{"title": "a", "status": "draft"},
		record.Record{"title": "b", "status": "published"},
		record.Record{"title": "c", "status": "archived"},
	)

	resp, _, err := f.dispatch(t, get("", "", url.Values{"filter[status][]": {"draft", "archived"}}))
	require.NoError(t, err)
	assert.Len(t, resp.Data["items"].([]record.Record), 2)
}

func TestListCustomPredicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{
		Custom: func(context.Context, *crud.Controller) query.Predicate {
			return query.Eq{Field: "owner", Value: "me"}
		},
	}))
	f.seed(t, record.Record{"owner": "me"}, record.Record{"owner": "you"})

	resp, _, err := f.dispatch(t, get("", "", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Data["items"].([]record.Record), 1)
}

func TestCreateRendersForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp, _, err := f.dispatch(t, get("create", "", nil))
	require.NoError(t, err)
	assert.Equal(t, "posts/create", resp.Template)
	assert.Equal(t, "/posts/create", resp.Data["actionUrl"])
	assert.Equal(t, "/posts", resp.Data["cancelActionUrl"])
}

func TestCreateInvalidDoesNotInsert(t *testing.T) {
	t.Parallel()

	events := 0
	f := newFixture(t,
		crud.WithPolicy(crud.Policy{Validators: []record.Validator{record.Required("title")}}),
		crud.WithListener(crud.EventItemBeforeInsert, func(context.Context, *crud.Controller, record.Record) { events++ }),
	)

	resp, c, err := f.dispatch(t, post("create", "", url.Values{"body": {"text"}}))
	require.NoError(t, err)

	assert.Equal(t, crud.KindHTML, resp.Kind)
	assert.Equal(t, "posts/create", resp.Template)
	assert.False(t, c.Terminated())
	assert.Equal(t, "text", resp.Data["item"].(record.Record)["body"])
	assert.Zero(t, events)

	n, err := f.store.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, `Field "title" is required`, msgs[0].Text)
}

func TestCreateRedirects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		saveAction string
		location   string
	}{
		{"", "/posts"},
		{crud.SaveAndCreateAnother, "/posts/create"},
		{crud.SaveAndStay, "/posts/id-1/edit"},
	}
	for _, tt := range tests {
		t.Run(tt.saveAction, func(t *testing.T) {
			t.Parallel()

			var order []string
			hook := func(name string) crud.Hook {
				return func(context.Context, *crud.Controller, record.Record) error {
					order = append(order, name)
					return nil
				}
			}
			f := newFixture(t, crud.WithHooks(crud.Hooks{
				OnBeforeCreate: hook("before"),
				OnAfterCreate:  hook("after"),
			}), crud.WithListener(crud.EventItemBeforeInsert, func(context.Context, *crud.Controller, record.Record) {
				order = append(order, "insert")
			}))

			form := url.Values{"title": {"hello"}, "meta.tags[]": {"a", "b"}}
			if tt.saveAction != "" {
				form.Set(crud.FieldSaveAction, tt.saveAction)
			}
			resp, c, err := f.dispatch(t, post("create", "", form))
			require.NoError(t, err)

			assert.Equal(t, crud.KindRedirect, resp.Kind)
			assert.Equal(t, http.StatusSeeOther, resp.Status)
			assert.Equal(t, tt.location, resp.Location)
			assert.True(t, c.Terminated())
			assert.Equal(t, []string{"before", "insert", "after"}, order)

			saved, err := f.store.FindByID(context.Background(), "id-1")
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, "hello", saved["title"])
			assert.Equal(t, "user-1", saved[record.FieldLastModifiedBy])
			assert.NotContains(t, saved, crud.FieldSaveAction)
			tags, _ := saved.Get("meta.tags")
			assert.Equal(t, []any{"a", "b"}, tags)

			msgs := f.flashes()
			require.Len(t, msgs, 1)
			assert.Equal(t, flash.Success, msgs[0].Type)
			assert.Equal(t, "Item successfully inserted to the database!", msgs[0].Text)
		})
	}
}

func TestCreateSanitizesInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{
		Fields:   []string{"title"},
		Sanitize: func(s string) string { return "clean:" + s },
	}))
	_, _, err := f.dispatch(t, post("create", "", url.Values{"title": {"x"}, "admin": {"true"}}))
	require.NoError(t, err)

	saved, err := f.store.FindByID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "clean:x", saved["title"])
	assert.NotContains(t, saved, "admin")
}

func TestCreateHookErrorAborts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithHooks(crud.Hooks{
		OnBeforeCreate: func(context.Context, *crud.Controller, record.Record) error {
			return errors.New("quota exceeded")
		},
	}))
	resp, _, err := f.dispatch(t, post("create", "", url.Values{"title": {"x"}}))
	require.NoError(t, err)
	assert.Equal(t, "/posts", resp.Location)

	n, _ := f.store.Count(context.Background(), nil)
	assert.Zero(t, n)
	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Failed to save item! quota exceeded", msgs[0].Text)
}

func TestEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	items := f.seed(t, record.Record{"title": "old", "body": "keep"})
	id := items[0].ID()

	t.Run("get", func(t *testing.T) {
		resp, _, err := f.dispatch(t, get("edit", id, nil))
		require.NoError(t, err)
		assert.Equal(t, "posts/edit", resp.Template)
		assert.Equal(t, true, resp.Data["isEditMode"])
		assert.Equal(t, "/posts/"+id+"/edit", resp.Data["actionUrl"])
		assert.Equal(t, "/posts/"+id, resp.Data["cancelActionUrl"])
	})

	t.Run("post", func(t *testing.T) {
		form := url.Values{"title": {"new"}, crud.FieldSaveAction: {crud.SaveAndStay}}
		resp, _, err := f.dispatch(t, post("edit", id, form))
		require.NoError(t, err)
		assert.Equal(t, "/posts/"+id+"/edit", resp.Location)

		saved, err := f.store.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "new", saved["title"])
		assert.Equal(t, "keep", saved["body"])

		msgs := f.flashes()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Item successfully updated in the database!", msgs[0].Text)
	})
}

func TestPreloadMissingItemTerminates(t *testing.T) {
	t.Parallel()

	called := false
	f := newFixture(t)
	f.res.HandleFunc(crud.HandlerEdit, func(context.Context, *crud.Controller) error {
		called = true
		return nil
	})

	resp, c, err := f.dispatch(t, get("edit", "nope", nil))
	require.NoError(t, err)
	assert.False(t, called)
	assert.True(t, c.Terminated())
	assert.Equal(t, crud.KindRedirect, resp.Kind)
	assert.Equal(t, "/posts", resp.Location)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to edit Item. Item is not exists in the database!", msgs[0].Text)
}

func TestView(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	items := f.seed(t, record.Record{"title": "x"})
	id := items[0].ID()

	resp, _, err := f.dispatch(t, get(id, "", nil))
	require.NoError(t, err)
	assert.Equal(t, "posts/view", resp.Template)
	assert.Equal(t, true, resp.Data["isViewMode"])
	assert.Equal(t, "/posts/"+id+"/edit", resp.Data["editActionUrl"])

	resp, _, err = f.dispatch(t, post(id, "", nil))
	require.NoError(t, err)
	assert.Equal(t, crud.KindError, resp.Kind)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	assert.Equal(t, "Action isn't supported", resp.Message)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	deleted := 0
	f := newFixture(t, crud.WithListener(crud.EventItemDelete, func(context.Context, *crud.Controller, record.Record) {
		deleted++
	}))
	items := f.seed(t, record.Record{"title": "x"})
	id := items[0].ID()

	resp, _, err := f.dispatch(t, post("delete", id, nil))
	require.NoError(t, err)
	assert.Equal(t, "/posts", resp.Location)
	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Item successfully removed from the database!", msgs[0].Text)

	_, _, err = f.dispatch(t, post("delete", id, nil))
	require.NoError(t, err)
	msgs = f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to delete Item. Item is not exists in the database!", msgs[0].Text)

	assert.Equal(t, 2, deleted)
}

func TestCustomAction(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithAction("publish", func(_ context.Context, c *crud.Controller) error {
		c.Respond(crud.JSON(http.StatusAccepted, map[string]string{"id": c.Action().ItemID}))
		return nil
	}))

	resp, c, err := f.dispatch(t, post("publish", "7", nil))
	require.NoError(t, err)
	assert.Equal(t, crud.KindJSON, resp.Kind)
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, crud.StateRendered, c.State())
}

func TestUnknownHandler(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.res.RegisterAction("archive", "missing")

	resp, c, err := f.dispatch(t, get("archive", "", nil))
	require.ErrorIs(t, err, crud.ErrUnknownAction)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.True(t, c.Terminated())
}

func TestHandlerErrorFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := newFixture(t)
	f.res.HandleFunc(crud.HandlerLoad, func(context.Context, *crud.Controller) error { return boom })

	resp, c, err := f.dispatch(t, get("", "", nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, crud.KindError, resp.Kind)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.True(t, c.Terminated())
}

var errDiskFull = errors.New("disk full")

// failingStore fails the operations given an error and counts saves.
type failingStore struct {
	record.Store
	insertErr error
	saveErr   error
	findErr   error
	removeErr error
	saves     atomic.Int32
}

func (s *failingStore) Insert(ctx context.Context, r record.Record) (record.Record, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	return s.Store.Insert(ctx, r)
}

func (s *failingStore) Save(ctx context.Context, r record.Record) (record.Record, error) {
	s.saves.Add(1)
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.Store.Save(ctx, r)
}

func (s *failingStore) FindByID(ctx context.Context, id string) (record.Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.Store.FindByID(ctx, id)
}

func (s *failingStore) RemoveByID(ctx context.Context, id, actor string) (record.Record, error) {
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	return s.Store.RemoveByID(ctx, id, actor)
}

func newFailingFixture(t *testing.T, store *failingStore, opts ...crud.Option) *fixture {
	t.Helper()
	mem := record.NewMemory("posts", record.WithIDGenerator(sequentialIDs()))
	store.Store = mem
	return newFixtureWithStore(t, mem, store, opts...)
}

func TestCreateStoreErrorRedirectsToList(t *testing.T) {
	t.Parallel()

	created := 0
	f := newFailingFixture(t, &failingStore{insertErr: errDiskFull},
		crud.WithListener(crud.EventItemCreate, func(context.Context, *crud.Controller, record.Record) { created++ }),
	)

	resp, c, err := f.dispatch(t, post("create", "", url.Values{"title": {"x"}}))
	require.NoError(t, err)
	assert.Equal(t, crud.KindRedirect, resp.Kind)
	assert.Equal(t, "/posts", resp.Location)
	assert.True(t, c.Terminated())
	assert.Zero(t, created)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to save item! disk full", msgs[0].Text)
}

func TestEditStoreErrorRedirectsToList(t *testing.T) {
	t.Parallel()

	updated := 0
	store := &failingStore{saveErr: errDiskFull}
	f := newFailingFixture(t, store,
		crud.WithListener(crud.EventItemUpdate, func(context.Context, *crud.Controller, record.Record) { updated++ }),
	)
	items := f.seed(t, record.Record{"title": "old"})

	resp, c, err := f.dispatch(t, post("edit", items[0].ID(), url.Values{"title": {"new"}}))
	require.NoError(t, err)
	assert.Equal(t, "/posts", resp.Location)
	assert.True(t, c.Terminated())
	assert.EqualValues(t, 1, store.saves.Load())
	assert.Zero(t, updated)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to save item! disk full", msgs[0].Text)

	saved, err := f.store.FindByID(context.Background(), items[0].ID())
	require.NoError(t, err)
	assert.Equal(t, "old", saved["title"])
}

func TestEditInvalidDoesNotSave(t *testing.T) {
	t.Parallel()

	store := &failingStore{}
	f := newFailingFixture(t, store,
		crud.WithPolicy(crud.Policy{Validators: []record.Validator{record.Required("title")}}),
	)
	items := f.seed(t, record.Record{"title": "old"})

	resp, c, err := f.dispatch(t, post("edit", items[0].ID(), url.Values{"title": {" "}}))
	require.NoError(t, err)
	assert.Equal(t, crud.KindHTML, resp.Kind)
	assert.Equal(t, "posts/edit", resp.Template)
	assert.False(t, c.Terminated())
	assert.Zero(t, store.saves.Load())

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, `Field "title" is required`, msgs[0].Text)
}

func TestPreloadStoreErrorTerminates(t *testing.T) {
	t.Parallel()

	called := false
	f := newFailingFixture(t, &failingStore{findErr: errors.New("connection reset")})
	f.res.HandleFunc(crud.HandlerEdit, func(context.Context, *crud.Controller) error {
		called = true
		return nil
	})

	resp, c, err := f.dispatch(t, get("edit", "id-1", nil))
	require.NoError(t, err)
	assert.False(t, called)
	assert.True(t, c.Terminated())
	assert.Equal(t, "/posts", resp.Location)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to edit item! connection reset", msgs[0].Text)
}

func TestDeleteStoreErrorStillEmits(t *testing.T) {
	t.Parallel()

	deleted := 0
	f := newFailingFixture(t, &failingStore{removeErr: errDiskFull},
		crud.WithListener(crud.EventItemDelete, func(context.Context, *crud.Controller, record.Record) { deleted++ }),
	)
	items := f.seed(t, record.Record{"title": "x"})

	resp, c, err := f.dispatch(t, post("delete", items[0].ID(), nil))
	require.NoError(t, err)
	assert.Equal(t, "/posts", resp.Location)
	assert.True(t, c.Terminated())
	assert.Equal(t, 1, deleted)

	msgs := f.flashes()
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Danger, msgs[0].Type)
	assert.Equal(t, "Failed to delete item! disk full", msgs[0].Text)
}

func TestItemRequestsDoNotStoreListState(t *testing.T) {
	t.Parallel()

	f := newFixture(t, crud.WithPolicy(crud.Policy{SearchFields: []string{"title"}}))
	items := f.seed(t, record.Record{"title": "x"})
	q := url.Values{"filter[search]": {"x"}}

	_, _, err := f.dispatch(t, get("edit", items[0].ID(), q))
	require.NoError(t, err)
	_, _, err = f.dispatch(t, get(items[0].ID(), "", q))
	require.NoError(t, err)

	_, ok := crud.NewSessionFilters(f.sess).LoadFilter("/posts")
	assert.False(t, ok)

	_, _, err = f.dispatch(t, get("", "", q))
	require.NoError(t, err)
	st, ok := crud.NewSessionFilters(f.sess).LoadFilter("/posts")
	require.True(t, ok)
	assert.Equal(t, "x", st.Search)
}

func TestListCapsPageSize(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, record.Record{"title": "x"})

	q := url.Values{"filter[pageSize]": {"9223372036854775807"}}
	resp, c, err := f.dispatch(t, get("", "", q))
	require.NoError(t, err)
	assert.Equal(t, query.MaxPageSize, c.ListState().PageSize)

	page := resp.Data["pagination"].(pagination.Pagination)
	assert.Equal(t, query.MaxPageSize, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
}
