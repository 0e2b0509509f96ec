package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures of the db, redis and job
// packages.
type CheckFunc func(ctx context.Context) error

// Checks names each check.
type Checks map[string]CheckFunc

type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness probe.
type Option func(*config)

// WithTimeout bounds all checks together. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes checks in parallel. The returned error joins ErrCheckFailed
// with each failure.
func Run(ctx context.Context, checks Checks, opts ...Option) (*Response, error) {
	cfg := &config{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
	)
	resp.Checks = make(map[string]Check, len(checks))

	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = errors.Join(ErrCheckTimeout, err)
			}

			res := Check{Status: StatusHealthy, Duration: time.Since(start).String()}
			if err != nil {
				res.Status, res.Error = StatusUnhealthy, err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err))
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = res
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		resp.Status = StatusUnhealthy
		return resp, errors.Join(append([]error{ErrCheckFailed}, errs...)...)
	}
	return resp, nil
}
