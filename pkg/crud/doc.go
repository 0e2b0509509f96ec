// Package crud implements the request lifecycle of scaffolded CRUD screens.
//
// A [Resource] is configured once per collection: its record store, the
// query policy for list screens, templates, hooks, lifecycle listeners and
// the action registry. Every request gets its own [Controller], which moves
// through a fixed sequence of states:
//
//	Created -> Initialized -> PreLoading -> Loading -> Rendered
//	                             |            |
//	                             +------------+--> Terminated (redirect)
//
// PreLoad loads the record for edit, doEdit and view actions and caches the
// list filter state for GET requests. When it terminates the response (for
// example because the record does not exist) the action handler never runs.
//
// Controllers do not write HTTP responses. [Controller.Dispatch] returns a
// [Response] value describing the page to render, the redirect to issue or
// the file to send; the HTTP binding in the scaffold application turns it
// into bytes.
//
// Built-in actions and their URLs:
//
//	GET       /base                      list
//	GET       /base/page/{page}          list
//	GET|POST  /base/create               create
//	GET       /base/{id}                 view
//	GET|POST  /base/{id}/edit            edit
//	POST      /base/{id}/delete          delete
//	GET|POST  /base/import               import (xlsx)
//	GET       /base/export               export (xlsx)
//	GET       /base/bulkEdit             bulk edit form
//	POST      /base/bulkEditPreview      bulk edit preview
//	POST      /base/doBulkEdit           bulk edit apply
//	POST      /base/bulkDelete           bulk delete
package crud
