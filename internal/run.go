package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	baseCtx         context.Context
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the graceful shutdown, hooks included.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn before the listener opens. An error aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook runs fn after the server stops, in registration order.
//
//	scaffold.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the parent of the signal context. Cancelling it stops
// the server.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

type runtimeConfig struct {
	handler         http.Handler
	logger          *slog.Logger
	baseCtx         context.Context
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if cfg.baseCtx == nil {
		cfg.baseCtx = context.Background()
	}
	log := cfg.logger

	ctx, cancel := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return errors.Join(err, shutdown(context.Background(), cfg, log))
		}
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(err, shutdown(context.Background(), cfg, log))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, shutdown(context.Background(), cfg, log))
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	errs := []error{server.Shutdown(shutdownCtx), shutdown(shutdownCtx, cfg, log)}
	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}
	log.Info("shutdown completed")
	return nil
}

// shutdown runs the shutdown hooks and joins their errors.
func shutdown(ctx context.Context, cfg runtimeConfig, log *slog.Logger) error {
	var errs []error
	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
