package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is what handlers declare routes on.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	PUT(path string, h HandlerFunc, mw ...Middleware)
	PATCH(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline group sharing middleware.
	Group(fn func(r Router))
	// Route creates a group under a pattern prefix.
	Route(pattern string, fn func(r Router))
	Use(mw ...Middleware)
	// Mount attaches a plain http.Handler.
	Mount(pattern string, h http.Handler)
}

type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodGet, path, h, mw)
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPost, path, h, mw)
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPut, path, h, mw)
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPatch, path, h, mw)
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodDelete, path, h, mw)
}

// handle applies route middleware so that the first listed runs first.
func (r *routerAdapter) handle(method, path string, h HandlerFunc, mw []Middleware) {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	r.router.Method(method, path, r.app.wrapHandler(h))
}

func (r *routerAdapter) sub(cr chi.Router) Router {
	return &routerAdapter{router: cr, app: r.app}
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) { fn(r.sub(cr)) })
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) { fn(r.sub(cr)) })
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

// adaptMiddleware turns a Middleware into chi middleware. The wrapped
// writer is passed down so that every layer shares one session hook.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := newContext(w, r, a)
			h := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			})
			if err := h(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}
