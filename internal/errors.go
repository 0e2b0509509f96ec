package internal

import (
	"errors"
	"net/http"
)

var (
	ErrSessionNotConfigured  = errors.New("scaffold: session not configured")
	ErrJobsNotConfigured     = errors.New("scaffold: job queue not configured")
	ErrMailerNotConfigured   = errors.New("scaffold: mailer not configured")
	ErrRendererNotConfigured = errors.New("scaffold: renderer not configured")
)

// HTTPError is an error with everything an error page needs.
type HTTPError struct {
	// Err is the cause. It is logged, never shown.
	Err       error
	Message   string
	Title     string
	Detail    string
	RequestID string
	Code      int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError. An empty message becomes the status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// defaultErrorHandler writes HTTPErrors with their code and message and
// everything else as a bare 500.
func defaultErrorHandler(c Context, err error) error {
	if httpErr := AsHTTPError(err); httpErr != nil {
		if httpErr.Code >= http.StatusInternalServerError {
			c.LogError("request failed", "status", httpErr.Code, "error", err)
		}
		http.Error(c.Response(), httpErr.Message, httpErr.Code)
		return nil
	}
	c.LogError("request failed", "error", err)
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	return nil
}
