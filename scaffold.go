package scaffold

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/scaffold/internal"
	"github.com/dmitrymomot/scaffold/pkg/cookie"
	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/health"
	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/render"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

type (
	// App is an HTTP application. It is immutable after New.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context is the request context passed to handlers.
	Context = internal.Context

	Handler      = internal.Handler
	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler

	Option        = internal.Option
	RunOption     = internal.RunOption
	HealthOption  = internal.HealthOption
	SessionOption = internal.SessionOption

	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	// ExtractorSource reads one value from a request, such as a principal.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor adds request-scoped attributes to log records.
	ContextExtractor = logger.ContextExtractor

	Session      = session.Session
	SessionStore = session.Store
)

// Errors returned when a Context helper needs a component the app lacks.
var (
	ErrSessionNotConfigured  = internal.ErrSessionNotConfigured
	ErrJobsNotConfigured     = internal.ErrJobsNotConfigured
	ErrMailerNotConfigured   = internal.ErrMailerNotConfigured
	ErrRendererNotConfigured = internal.ErrRendererNotConfigured
)

// New creates an application.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewHTTPError creates an error carrying an HTTP status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// AsHTTPError returns the first HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

func WithTitle(title string) HTTPErrorOption   { return internal.WithTitle(title) }
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }
func WithRequestID(id string) HTTPErrorOption  { return internal.WithRequestID(id) }
func WithError(err error) HTTPErrorOption      { return internal.WithError(err) }

// App options

func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithResources mounts CRUD resources under their base URLs.
// Resources need a renderer.
func WithResources(res ...*crud.Resource) Option {
	return internal.WithResources(res...)
}

// WithAPI mounts a read-only JSON resource at pattern.
func WithAPI(pattern string, api *crud.APIResource) Option {
	return internal.WithAPI(pattern, api)
}

func WithRenderer(r render.Renderer) Option {
	return internal.WithRenderer(r)
}

// WithSession enables sessions, which also carry flash messages and saved
// list filters.
//
//	scaffold.WithSession(
//	    session.NewCacheStore(cache.NewRedis[session.Session](client, nil, cache.WithPrefix("sess:"))),
//	    scaffold.WithSessionCookies(cookie.New(cookie.WithSecret(secret))),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

func WithSessionTTL(ttl time.Duration) SessionOption {
	return internal.WithSessionTTL(ttl)
}

// WithSessionCookies sets the cookie manager, typically one with a secret.
func WithSessionCookies(m *cookie.Manager) SessionOption {
	return internal.WithSessionCookies(m)
}

// WithPrincipal sets how the acting user is identified for CRUD
// notifications. The session user id is used by default.
func WithPrincipal(sources ...ExtractorSource) Option {
	return internal.WithPrincipal(sources...)
}

func WithJobs(s job.Submitter) Option {
	return internal.WithJobs(s)
}

// WithJobWorker runs m for the lifetime of Run. It also serves as the job
// submitter unless WithJobs is given.
func WithJobWorker(m *job.Manager) Option {
	return internal.WithJobWorker(m)
}

func WithMailer(c *mailer.Client) Option {
	return internal.WithMailer(c)
}

func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMetrics serves h at path, typically metrics.Metrics.Handler().
func WithMetrics(path string, h http.Handler) Option {
	return internal.WithMetrics(path, h)
}

// WithStaticFiles serves subDir of fsys under pattern.
//
//	//go:embed public
//	var assets embed.FS
//
//	scaffold.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables liveness and readiness endpoints.
//
//	scaffold.WithHealthChecks(
//	    scaffold.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Extractor sources

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource  { return internal.FromQuery(name) }
func FromParam(name string) ExtractorSource  { return internal.FromParam(name) }
func FromForm(name string) ExtractorSource   { return internal.FromForm(name) }
func FromSession(key string) ExtractorSource { return internal.FromSession(key) }
func FromUserID() ExtractorSource            { return internal.FromUserID() }
func FromBearerToken() ExtractorSource       { return internal.FromBearerToken() }

// Run options

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the listener opens. An error aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs fn after the server stops accepting requests.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context. Cancelling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
