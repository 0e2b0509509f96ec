// Package internal implements the application behind the scaffold facade.
//
// Import "github.com/dmitrymomot/scaffold" instead; it re-exports this API.
//
// An App is built once with options and never mutated:
//
//	app := internal.New(
//	    internal.WithLogger(log),
//	    internal.WithSession(store),
//	    internal.WithRenderer(views),
//	    internal.WithResources(posts, authors),
//	)
//
// Every CRUD resource is mounted under its base URL with four GET/POST
// routes: base, base/page/{page}, base/{action} and base/{id}/{action}.
// The binding turns the request into a crud.Request, runs the controller
// and writes the resulting page, redirect, JSON document or file. Flash
// messages live in the session and are drained into the "flash" key of
// every rendered page.
//
// Context embeds context.Context, so handlers pass it straight to stores,
// the job queue and the mailer. Session changes are saved right before the
// first byte of the response is written.
package internal
