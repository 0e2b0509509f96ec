package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/health"
	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/render"
)

// Server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// App owns the router and every collaborator a request may reach.
// It is immutable after New.
type App struct {
	router       chi.Router
	errorHandler ErrorHandler
	notFound     HandlerFunc
	logger       *slog.Logger
	sessions     *SessionManager
	renderer     render.Renderer
	jobs         job.Submitter
	worker       *job.Manager
	mailer       *mailer.Client
	health       *healthConfig
	metrics      http.Handler
	metricsPath  string
	principal    Extractor
	middlewares  []Middleware
	handlers     []Handler
	mounts       []mount
}

type mount struct {
	handler http.Handler
	pattern string
}

// New creates an application.
//
//	app := scaffold.New(
//	    scaffold.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    scaffold.WithResources(posts),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		errorHandler: defaultErrorHandler,
		principal:    NewExtractor(FromUserID()),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessions != nil {
		a.sessions.setLogger(a.logger)
	}
	if a.jobs == nil && a.worker != nil {
		a.jobs = a.worker
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP makes the App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Worker returns the job worker, or nil.
func (a *App) Worker() *job.Manager {
	return a.worker
}

func (a *App) setupRoutes() {
	if a.notFound != nil {
		a.router.NotFound(a.wrapHandler(a.notFound))
	}
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}
	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}
	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, health.WithLogger(a.logger)))
	}
	if a.metrics != nil {
		a.router.Handle(a.metricsPath, a.metrics)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError passes err to the error handler unless a response is
// already on the wire.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("handler failed after writing response", "error", err)
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		c.LogError("error handler failed", "error", herr)
		if !c.Written() {
			http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// Run serves on addr until SIGINT or SIGTERM. The job worker, when
// configured, starts before the listener and stops after it, ahead of the
// shutdown hooks so that hooks may close what the workers use.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	startup := cfg.startupHooks
	shutdown := cfg.shutdownHooks
	if a.worker != nil {
		startup = append([]func(context.Context) error{a.worker.StartFunc()}, startup...)
		shutdown = append([]func(context.Context) error{a.worker.Shutdown()}, shutdown...)
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startup,
		shutdownHooks:   shutdown,
		baseCtx:         cfg.baseCtx,
	})
}

// resourceRoutes adapts resources to Handlers.
func resourceRoutes(a *App, res []*crud.Resource) []Handler {
	out := make([]Handler, 0, len(res))
	for _, r := range res {
		out = append(out, &resourceHandler{res: r, app: a})
	}
	return out
}
