package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/scaffold/pkg/flash"
	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

// FlashDataKey is the template data key holding drained flash messages.
const FlashDataKey = "flash"

// Context is the per-request API handed to handlers and middleware.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter
	// Context returns the request context.
	Context() context.Context

	Param(name string) string
	Query(name string) string
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	Redirect(code int, url string) error
	// Render writes the named template through the app renderer. Pending
	// flash messages are passed under FlashDataKey and drained once the page
	// renders.
	Render(code int, template string, data map[string]any) error
	// Error builds an HTTPError for the ErrorHandler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError
	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key, value any)
	Get(key any) any

	// Session returns the current session, or nil when the visitor has none.
	Session() (*session.Session, error)
	// InitSession starts a new session and sets its cookie.
	InitSession() error
	// AuthenticateSession attaches userID to the session and rotates its token.
	AuthenticateSession(userID string) error
	SessionValue(key string) (any, error)
	SetSessionValue(key string, val any) error
	DestroySession() error
	UserID() string
	IsAuthenticated() bool

	// Flash returns the session flash sink. Adding a message starts a
	// session when the visitor has none.
	Flash() *flash.Sink

	Enqueue(j job.Job, opts ...job.EnqueueOption) error
	SendEmail(msg *mailer.Message) (*mailer.Result, error)
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	session  *session.Session
	flash    *flash.Sink

	sessionLoaded  bool
	hookRegistered bool
}

type requestContextKey struct{}

// newContext returns the request's existing context when a middleware
// already created one, so the session is loaded and saved once.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	if prev, ok := r.Context().Value(requestContextKey{}).(*requestContext); ok && prev.app == app {
		prev.request = r
		return prev
	}

	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	c := &requestContext{response: rw, app: app}
	c.request = r.WithContext(context.WithValue(r.Context(), requestContextKey{}, c))
	return c
}

func (c *requestContext) Request() *http.Request { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context { return c.request.Context() }
func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{} { return c.request.Context().Done() }
func (c *requestContext) Err() error { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any { return c.request.Context().Value(key) }
func (c *requestContext) Param(name string) string { return chi.URLParam(c.request, name) }
func (c *requestContext) Query(name string) string { return c.request.URL.Query().Get(name) }
func (c *requestContext) Form(name string) string { return c.request.FormValue(name) }
func (c *requestContext) Header(name string) string { return c.request.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }
func (c *requestContext) Written() bool { return c.response.Written() }
func (c *requestContext) Logger() *slog.Logger { return c.app.logger }
func (c *requestContext) Get(key any) any { return c.request.Context().Value(key) }
func (c *requestContext) LogDebug(msg string, attrs ...any) { c.app.logger.DebugContext(c.Context(), msg, attrs...) }
func (c *requestContext) LogInfo(msg string, attrs ...any) { c.app.logger.InfoContext(c.Context(), msg, attrs...) }
func (c *requestContext) LogWarn(msg string, attrs ...any) { c.app.logger.WarnContext(c.Context(), msg, attrs...) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.app.logger.ErrorContext(c.Context(), msg, attrs...) }

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) JSON(code int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	_, err = c.response.Write(body)
	return err
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, template string, data map[string]any) error {
	if c.app.renderer == nil {
		return ErrRendererNotConfigured
	}
	if data == nil {
		data = make(map[string]any)
	}
	_, preset := data[FlashDataKey]
	if !preset {
		data[FlashDataKey] = c.Flash().Messages()
	}

	body, err := c.app.renderer.RenderHTML(c.Context(), template, data)
	if err != nil {
		return err
	}
	// Messages leave the session only once a page has shown them.
	if !preset {
		c.Flash().Drain()
	}
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err = c.response.Write(body)
	return err
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

// registerSessionHook saves the session before the response goes out.
// Save errors are logged; the response is already decided.
func (c *requestContext) registerSessionHook() {
	if c.hookRegistered {
		return
	}
	c.hookRegistered = true
	c.response.OnBeforeWrite(func() {
		if c.session == nil {
			return
		}
		if err := c.app.sessions.Save(c.Context(), c.session); err != nil {
			c.LogError("failed to save session", "error", err)
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessions == nil {
		return nil, ErrSessionNotConfigured
	}
	c.registerSessionHook()
	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.app.sessions.Load(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) InitSession() error {
	if c.app.sessions == nil {
		return ErrSessionNotConfigured
	}
	c.registerSessionHook()

	sess, err := c.app.sessions.Create(c.Context(), c.request)
	if err != nil {
		return err
	}
	c.session = sess
	c.sessionLoaded = true
	c.app.sessions.WriteCookie(c.response, sess)
	return nil
}

// ensureSession returns the current session, starting one when needed.
func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil || sess != nil {
		return sess, err
	}
	if err := c.InitSession(); err != nil {
		return nil, err
	}
	return c.session, nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.UserID = &userID
	if err := c.app.sessions.Rotate(c.Context(), sess); err != nil {
		return err
	}
	c.app.sessions.WriteCookie(c.response, sess)
	return nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil, err
	}
	v, _ := sess.GetValue(key)
	return v, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess != nil {
		if err := c.app.sessions.Destroy(c.Context(), sess); err != nil {
			return err
		}
	}
	c.app.sessions.ClearCookie(c.response)
	c.session = nil
	c.sessionLoaded = true
	return nil
}

func (c *requestContext) UserID() string {
	sess, err := c.Session()
	if err != nil || sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) Flash() *flash.Sink {
	if c.flash == nil {
		if c.app.sessions == nil {
			c.flash = flash.New(nil)
		} else {
			c.flash = flash.New(sessionValues{c})
		}
	}
	return c.flash
}

func (c *requestContext) Enqueue(j job.Job, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return ErrJobsNotConfigured
	}
	return c.app.jobs.Enqueue(c.Context(), j, opts...)
}

func (c *requestContext) SendEmail(msg *mailer.Message) (*mailer.Result, error) {
	if c.app.mailer == nil {
		return nil, ErrMailerNotConfigured
	}
	return c.app.mailer.Send(c.Context(), msg)
}

// sessionValues exposes the request session as a flash.Store. Reads never
// start a session; writes do.
type sessionValues struct {
	c *requestContext
}

func (s sessionValues) GetValue(key string) (any, bool) {
	sess, err := s.c.Session()
	if err != nil || sess == nil {
		return nil, false
	}
	return sess.GetValue(key)
}

func (s sessionValues) SetValue(key string, val any) {
	sess, err := s.c.ensureSession()
	if err != nil {
		if !errors.Is(err, ErrSessionNotConfigured) {
			s.c.LogError("failed to start session", "error", err)
		}
		return
	}
	sess.SetValue(key, val)
}

func (s sessionValues) DeleteValue(key string) {
	if sess, err := s.c.Session(); err == nil && sess != nil {
		sess.DeleteValue(key)
	}
}
