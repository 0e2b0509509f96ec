package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

// Result describes an accepted message.
type Result struct {
	// ID is the provider's message id.
	ID       string
	Provider string
}

// Sender delivers a prepared message.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg *Message) (*Result, error)

func (f SenderFunc) Send(ctx context.Context, msg *Message) (*Result, error) {
	return f(ctx, msg)
}

// LogSender writes messages to a logger instead of delivering them.
// Use it in development and tests.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger discards output.
func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = logger.NewNope()
	}
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	res := &Result{ID: uuid.NewString(), Provider: "log"}
	s.logger.InfoContext(ctx, "email",
		slog.String("id", res.ID),
		slog.String("from", msg.From.String()),
		slog.Any("to", AddressList(msg.To)),
		slog.Any("cc", AddressList(msg.CC)),
		slog.Any("bcc", AddressList(msg.BCC)),
		slog.String("subject", msg.Subject),
		slog.Int("attachments", len(msg.Attachments)),
		slog.String("text", msg.Text),
	)
	return res, nil
}
