package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scaffold/internal"
	"github.com/dmitrymomot/scaffold/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are checked in order for an upstream id.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDConfig struct {
	generator      func() string
	responseHeader string
	headers        []string
}

type RequestIDOption func(*requestIDConfig)

func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.responseHeader = header
		}
	}
}

// RequestID stores a request id in the context and echoes it in the
// response header. Ids are UUIDs unless an upstream header carries one.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		headers:        DefaultRequestIDHeaders,
		generator:      uuid.NewString,
		responseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var id string
			for _, h := range cfg.headers {
				if id = c.Header(h); id != "" {
					break
				}
			}
			if id == "" {
				id = cfg.generator()
			}

			c.Set(requestIDKey{}, id)
			c.SetHeader(cfg.responseHeader, id)
			return next(c)
		}
	}
}

// GetRequestID returns the request id, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := GetRequestID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}
