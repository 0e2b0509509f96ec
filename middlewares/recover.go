package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/scaffold/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize    int
	disableStack bool
}

type RecoverOption func(*recoverConfig)

func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisableStack skips stack capture.
func WithRecoverDisableStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disableStack = true
	}
}

// Recover converts panics into a *PanicError returned to the ErrorHandler.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				pe := &PanicError{Value: r}
				if !cfg.disableStack {
					pe.Stack = make([]byte, cfg.stackSize)
					pe.Stack = pe.Stack[:runtime.Stack(pe.Stack, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(pe.Stack))
				} else {
					c.LogError("panic recovered", "panic", r)
				}
				err = pe
			}()
			return next(c)
		}
	}
}
