// Package scaffold wires server-side CRUD resources into an HTTP
// application.
//
// A resource couples a record store with list, view, create, edit, delete,
// bulk and export actions. The app mounts each resource under its base URL,
// keeps filter state and flash messages in the session, and hands rendered
// pages to a template renderer:
//
//	posts := crud.MustResource("posts", "/admin/posts", store,
//	    crud.WithPolicy(crud.Policy{SearchFields: []string{"title"}}),
//	)
//
//	app := scaffold.New(
//	    scaffold.WithLogger(log),
//	    scaffold.WithSession(sessions),
//	    scaffold.WithRenderer(render.New(views)),
//	    scaffold.WithResources(posts),
//	)
//
//	if err := app.Run(":8080", scaffold.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Handlers
//
// Custom pages implement [Handler]:
//
//	func (h *Dashboard) Routes(r scaffold.Router) {
//	    r.GET("/", h.index)
//	}
//
// Handlers return errors. The app's [ErrorHandler] turns them into
// responses, with [HTTPError] carrying a status code.
//
// # JSON API
//
// [WithAPI] mounts a read-only JSON endpoint guarded by an API key sent in
// the X-API-Key header.
//
// # Background work
//
// [WithJobs] enables Context.Enqueue and [WithJobWorker] also runs the
// workers for the lifetime of Run. [WithMailer] enables Context.SendEmail.
package scaffold
