package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/internal"
	"github.com/dmitrymomot/scaffold/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	newApp := func(captured *error, opts ...middlewares.RecoverOption) *internal.App {
		return internal.New(
			internal.WithMiddleware(middlewares.Recover(opts...)),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				*captured = err
				return c.String(http.StatusInternalServerError, "oops")
			}),
			internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/panic", func(internal.Context) error { panic("boom") })
				r.GET("/ok", func(c internal.Context) error { return c.NoContent(http.StatusNoContent) })
			})),
		)
	}

	t.Run("panic becomes error", func(t *testing.T) {
		t.Parallel()

		var got error
		w := serve(newApp(&got), httptest.NewRequest(http.MethodGet, "/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		pe, ok := middlewares.AsPanicError(got)
		require.True(t, ok)
		assert.Equal(t, "boom", pe.Value)
		assert.NotEmpty(t, pe.Stack)
		assert.Equal(t, "panic: boom", pe.Error())
	})

	t.Run("stack disabled", func(t *testing.T) {
		t.Parallel()

		var got error
		serve(newApp(&got, middlewares.WithRecoverDisableStack()), httptest.NewRequest(http.MethodGet, "/panic", nil))

		pe, ok := middlewares.AsPanicError(got)
		require.True(t, ok)
		assert.Nil(t, pe.Stack)
	})

	t.Run("stack size limit", func(t *testing.T) {
		t.Parallel()

		var got error
		serve(newApp(&got, middlewares.WithRecoverStackSize(64)), httptest.NewRequest(http.MethodGet, "/panic", nil))

		pe, ok := middlewares.AsPanicError(got)
		require.True(t, ok)
		assert.LessOrEqual(t, len(pe.Stack), 64)
	})

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()

		var got error
		w := serve(newApp(&got), httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NoError(t, got)
	})
}

func TestAsPanicError(t *testing.T) {
	t.Parallel()

	_, ok := middlewares.AsPanicError(errors.New("plain"))
	assert.False(t, ok)

	wrapped := errors.Join(errors.New("ctx"), &middlewares.PanicError{Value: 1})
	pe, ok := middlewares.AsPanicError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 1, pe.Value)
}
