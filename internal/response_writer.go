package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records the status and size of a response and runs hooks
// right before the header is sent.
type ResponseWriter struct {
	http.ResponseWriter
	beforeWrite []func()
	size        int64
	status      int
	mu          sync.Mutex
	written     bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers a hook. Hooks run once, in registration order.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// begin marks the response written and returns the pending hooks.
func (w *ResponseWriter) begin(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	if code > 0 {
		w.status = code
	}
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

func (w *ResponseWriter) WriteHeader(code int) {
	hooks, first := w.begin(code)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, first := w.begin(0); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(w.status)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

func (w *ResponseWriter) Status() int {
	return w.status
}

func (w *ResponseWriter) Size() int64 {
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
