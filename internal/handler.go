package internal

// Handler declares routes on a router.
//
//	func (h *Dashboard) Routes(r scaffold.Router) {
//	    r.GET("/", h.index)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a request. A returned error goes to the app's
// ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
