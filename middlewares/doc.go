// Package middlewares provides HTTP middleware for scaffold applications.
//
// # Request ID
//
// RequestID assigns an id to each request, reusing one sent upstream. Pair
// it with RequestIDExtractor so every log record carries the id:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor(), crud.LogExtractor())
//	app := scaffold.New(
//	    scaffold.WithLogger(log),
//	    scaffold.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//
// # Recover
//
// Recover turns a panic into a *PanicError for the app ErrorHandler.
//
// # RequireAuth
//
// RequireAuth redirects visitors without an authenticated session, which
// keeps CRUD back offices behind a login page:
//
//	r.Group(func(r scaffold.Router) {
//	    r.Use(middlewares.RequireAuth("/login"))
//	})
package middlewares
