// Package logger builds slog loggers whose records carry request-scoped
// attributes.
//
// A [ContextExtractor] pulls one attribute out of the context on every
// log call, so handlers that log with InfoContext(ctx, ...) get the
// request id, the CRUD resource and action, and so on without passing
// them around:
//
//	log := logger.New(logger.Config{Level: "debug", Format: "text"},
//	    middlewares.RequestIDExtractor(),
//	    crud.LogExtractor(),
//	)
//
// With a Sentry DSN configured, warnings and errors are also shipped to
// Sentry; errors become issues. Without one, only the local handler runs.
package logger
