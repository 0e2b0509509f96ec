package crud

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

type actionCtxKey struct{}

type actionInfo struct {
	resource string
	action   string
}

func withAction(ctx context.Context, resource, action string) context.Context {
	return context.WithValue(ctx, actionCtxKey{}, actionInfo{resource: resource, action: action})
}

// ActionFromContext returns the resource and action being dispatched.
func ActionFromContext(ctx context.Context) (resource, action string, ok bool) {
	info, ok := ctx.Value(actionCtxKey{}).(actionInfo)
	return info.resource, info.action, ok
}

// LogExtractor adds the dispatched resource and action to log records.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		resource, action, ok := ActionFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.Group("crud", slog.String("resource", resource), slog.String("action", action)), true
	}
}
