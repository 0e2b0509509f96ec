package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and pings it, retrying transient failures.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = cfg.MaxOpenConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck pings the pool. Compatible with health.CheckFunc.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrUnavailable
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrUnavailable, err)
		}
		return nil
	}
}

// Shutdown closes the pool when the app stops.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
