package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

const (
	defaultMaxWorkers = 100
	defaultQueue      = river.QueueDefault
)

// Manager enqueues jobs and runs the registered commands.
type Manager struct {
	*Enqueuer
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates the River client immediately so jobs can be enqueued
// before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	queues := map[string]river.QueueConfig{
		defaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, s := range cfg.schedules {
		sched, err := parseCronSchedule(s.cron)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", s.cron, err)
		}
		worker, command := s.worker, s.command
		periodic = append(periodic, river.NewPeriodicJob(
			sched,
			func() (river.JobArgs, *river.InsertOpts) {
				return &commandArgs{Worker: worker, Command: command}, &river.InsertOpts{MaxAttempts: DefaultAttempts}
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
		cfg.registry.register(commandName(worker, command), s.handler)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &commandWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{pool: pool, client: client, logger: cfg.logger},
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.Info("job manager started", slog.Any("commands", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// Enqueue rejects commands this manager does not run.
func (m *Manager) Enqueue(ctx context.Context, j Job, opts ...EnqueueOption) error {
	if err := m.known(j); err != nil {
		return err
	}
	return m.Enqueuer.Enqueue(ctx, j, opts...)
}

func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, j Job, opts ...EnqueueOption) error {
	if err := m.known(j); err != nil {
		return err
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, j, opts...)
}

func (m *Manager) known(j Job) error {
	if err := j.validate(); err != nil {
		return err
	}
	if _, ok := m.registry.get(j.Name()); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, j.Name())
	}
	return nil
}

// Commands lists the registered command names.
func (m *Manager) Commands() []string {
	return m.registry.names()
}

// StartFunc adapts Start to a startup hook.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}

// Shutdown adapts Stop to a shutdown hook.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

type commandWorker struct {
	river.WorkerDefaults[commandArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *commandWorker) Work(ctx context.Context, job *river.Job[commandArgs]) error {
	name := commandName(job.Args.Worker, job.Args.Command)
	exec, ok := w.registry.get(name)
	if !ok || exec == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	log := w.logger.With(
		slog.String("command", name),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
	log.DebugContext(ctx, "executing command")

	if err := exec.Execute(ctx, job.Args.Params); err != nil {
		log.ErrorContext(ctx, "command failed", slog.Any("error", err))
		return err
	}
	log.DebugContext(ctx, "command completed")
	return nil
}

type cronSchedule struct {
	schedule cron.Schedule
}

func (s cronSchedule) Next(current time.Time) time.Time {
	return s.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{schedule: s}, nil
}
