// Package provider builds a mailer.Sender from configuration.
package provider

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/mailer/resend"
)

// Log writes messages to the logger instead of sending them.
const Log = "log"

// Config selects and configures the provider.
type Config struct {
	Provider string `env:"EMAIL_PROVIDER" envDefault:"log"`
	Resend   resend.Config
}

// New returns the sender for cfg.Provider. The logger is used by the log
// provider only.
func New(cfg Config, l *slog.Logger) (mailer.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case resend.ProviderName:
		return resend.New(cfg.Resend), nil
	case Log, "":
		return mailer.NewLogSender(l), nil
	default:
		return nil, fmt.Errorf("%w: %q", mailer.ErrUnsupportedProvider, cfg.Provider)
	}
}
