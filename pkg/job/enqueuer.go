package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

// Submitter is implemented by Enqueuer and Manager.
type Submitter interface {
	Enqueue(ctx context.Context, j Job, opts ...EnqueueOption) error
}

// Enqueuer inserts jobs without processing them.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures the enqueuer.
type EnqueuerOption func(*Enqueuer)

func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(e *Enqueuer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only River client.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	e := &Enqueuer{pool: pool, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(e)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{Logger: e.logger})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}
	e.client = client
	return e, nil
}

// Enqueue inserts j. Commands are resolved by the worker process.
func (e *Enqueuer) Enqueue(ctx context.Context, j Job, opts ...EnqueueOption) error {
	args, insert, err := buildArgs(j, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.Insert(ctx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", j.Name(), err)
	}
	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("worker", j.Worker),
		slog.String("command", j.Command))
	return nil
}

// EnqueueTx inserts j within tx; the job becomes visible on commit.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, j Job, opts ...EnqueueOption) error {
	args, insert, err := buildArgs(j, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.InsertTx(ctx, tx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue %s in tx: %w", j.Name(), err)
	}
	return nil
}
