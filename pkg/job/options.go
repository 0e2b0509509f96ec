package job

import (
	"context"
	"log/slog"
)

type config struct {
	registry   *registry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []schedule
	maxWorkers int
}

func newConfig() *config {
	return &config{
		registry: newRegistry(),
		queues:   make(map[string]int),
	}
}

//nolint:betteralign // all fields contain pointers, no optimization possible
type schedule struct {
	handler scheduledCommand
	worker  string
	command string
	cron    string
}

// Option configures the manager.
type Option func(*config)

// WithCommand registers fn as worker.command. Parameters are decoded from
// the job's JSON into P.
func WithCommand[P any](worker, command string, fn func(context.Context, P) error) Option {
	return func(c *config) {
		if fn == nil {
			return
		}
		c.registry.register(commandName(worker, command), typedCommand[P]{fn: fn})
	}
}

// WithSchedule runs worker.command periodically. expr is a five field cron
// expression (minute hour day month weekday).
func WithSchedule(worker, command, expr string, fn func(context.Context) error) Option {
	return func(c *config) {
		if fn == nil {
			return
		}
		c.schedules = append(c.schedules, schedule{
			worker:  worker,
			command: command,
			cron:    expr,
			handler: fn,
		})
	}
}

// WithQueue runs a named queue with the given number of workers.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
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

// WithMaxWorkers bounds the default queue. Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
