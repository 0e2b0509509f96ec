package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/health"
	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/render"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger. Build it with logger.New to get
// request ids and CRUD action names on every record.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithResources mounts CRUD resources under their base URLs.
func WithResources(res ...*crud.Resource) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, resourceRoutes(a, res)...)
	}
}

// WithAPI mounts a JSON API resource at pattern and pattern/{id}.
//
//	scaffold.WithAPI("/api/posts", postsAPI)
func WithAPI(pattern string, api *crud.APIResource) Option {
	return func(a *App) {
		if api != nil && pattern != "" {
			a.handlers = append(a.handlers, &apiHandler{api: api, app: a, pattern: pattern})
		}
	}
}

// WithRenderer sets the renderer used by Context.Render and the CRUD views.
func WithRenderer(r render.Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithSession enables sessions, flash messages and cached list filters.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		if store != nil {
			a.sessions = NewSessionManager(store, opts...)
		}
	}
}

// WithPrincipal sets how the acting user is found for audit fields.
// Defaults to the session user id.
func WithPrincipal(sources ...ExtractorSource) Option {
	return func(a *App) {
		if len(sources) > 0 {
			a.principal = NewExtractor(sources...)
		}
	}
}

// WithJobs enables Context.Enqueue without running workers, for web-only
// processes.
func WithJobs(s job.Submitter) Option {
	return func(a *App) {
		a.jobs = s
	}
}

// WithJobWorker runs m alongside the server and enqueues through it.
func WithJobWorker(m *job.Manager) Option {
	return func(a *App) {
		a.worker = m
	}
}

// WithMailer enables Context.SendEmail.
func WithMailer(c *mailer.Client) Option {
	return func(a *App) {
		a.mailer = c
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFound = h
	}
}

// WithMetrics serves h, usually metrics.Metrics.Handler(), at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(a *App) {
		if path != "" && h != nil {
			a.metricsPath = path
			a.metrics = h
		}
	}
}

// WithStaticFiles serves subDir of fsys at pattern. Directory listings are
// disabled.
//
//	//go:embed public
//	var assets embed.FS
//
//	scaffold.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))

		a.mounts = append(a.mounts, mount{pattern: pattern, handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		})})
	}
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

type HealthOption func(*healthConfig)

// WithHealthChecks enables the liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			checks:        make(health.Checks),
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named check to the readiness probe.
//
//	scaffold.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}
