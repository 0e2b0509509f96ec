package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option configures a connection.
type Option func(*options)

type options struct {
	poolSize      int
	minIdleConns  int
	retryAttempts int
	retryInterval time.Duration
	maxIdleTime   time.Duration
	timeout       time.Duration
}

// WithPoolSize sets the maximum number of connections. Default 10.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

func WithMinIdleConns(n int) Option {
	return func(o *options) {
		o.minIdleConns = n
	}
}

// WithRetry sets how often the first ping is attempted and the base delay
// between attempts. Default 3 attempts, 2 seconds.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithTimeout sets dial, read and write timeouts. Default 3 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Open parses a redis:// or rediss:// URL and connects.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidURL
	}

	o := &options{
		poolSize:      10,
		minIdleConns:  2,
		retryAttempts: 3,
		retryInterval: 2 * time.Second,
		maxIdleTime:   10 * time.Minute,
		timeout:       3 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.MinIdleConns = o.minIdleConns
	ro.ConnMaxIdleTime = o.maxIdleTime
	ro.DialTimeout = o.timeout
	ro.ReadTimeout = o.timeout
	ro.WriteTimeout = o.timeout

	for i := range max(o.retryAttempts, 1) {
		client := redis.NewClient(ro)
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}
	return nil, errors.Join(ErrConnect, err)
}

// Shutdown closes the client when the app stops.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}

// Healthcheck pings client, for use as a readiness check.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnavailable
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	}
}
