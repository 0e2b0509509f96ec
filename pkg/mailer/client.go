package mailer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

// BeforeSendFunc runs before every delivery. It may modify the message;
// a non-nil error aborts the send.
type BeforeSendFunc func(ctx context.Context, msg *Message) error

// Client validates and delivers messages through a Sender.
type Client struct {
	sender Sender
	logger *slog.Logger
	hooks  []BeforeSendFunc
	from   Address
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFrom sets the sender used when a message has none.
func WithFrom(a Address) ClientOption {
	return func(c *Client) {
		c.from = a
	}
}

// WithBeforeSend appends hooks. Hooks run in registration order.
func WithBeforeSend(fns ...BeforeSendFunc) ClientOption {
	return func(c *Client) {
		for _, fn := range fns {
			if fn != nil {
				c.hooks = append(c.hooks, fn)
			}
		}
	}
}

func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient wraps sender.
func NewClient(sender Sender, opts ...ClientOption) *Client {
	c := &Client{sender: sender, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send fills the default sender, runs the hooks, validates and delivers.
func (c *Client) Send(ctx context.Context, msg *Message) (*Result, error) {
	if msg == nil {
		return nil, ErrNoContent
	}
	if msg.From.IsZero() {
		msg.From = c.from
	}

	for _, hook := range c.hooks {
		if err := hook(ctx, msg); err != nil {
			return nil, err
		}
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	res, err := c.sender.Send(ctx, msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "email delivery failed",
			slog.String("subject", msg.Subject),
			slog.Any("error", err))
		return nil, errors.Join(ErrSendFailed, err)
	}
	return res, nil
}
