package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config selects the output format and level.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig

	// Output defaults to os.Stdout.
	Output io.Writer `env:"-"`
}

// SentryConfig enables the Sentry fan-out when DSN is set.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// ParseLevel maps debug, info, warn and error; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger with the given extractors. Extractors apply to
// every destination.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var local slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		local = slog.NewTextHandler(out, opts)
	} else {
		local = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize sentry", slog.Any("error", err))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newMultiHandler(local, remote), extractors...))
}

// NewNope discards everything. It is the default logger of every
// component that takes one.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
