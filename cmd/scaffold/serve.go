package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scaffold"
	"github.com/dmitrymomot/scaffold/middlewares"
	"github.com/dmitrymomot/scaffold/pkg/cache"
	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/db"
	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/mailer/provider"
	"github.com/dmitrymomot/scaffold/pkg/metrics"
	"github.com/dmitrymomot/scaffold/pkg/record"
	"github.com/dmitrymomot/scaffold/pkg/redis"
)

// serveOptions are the serve settings, read from the environment with the
// rest of rootOptions.
type serveOptions struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsPath     string        `env:"METRICS_PATH" envDefault:"/metrics"`
	RedisURL        string        `env:"REDIS_URL"`
	Mail            provider.Config
	From            mailer.Config
	KeyTTL          time.Duration `env:"API_KEY_TTL" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Workers         int           `env:"JOB_WORKERS" envDefault:"10"`
}

func newServeCmd(o *rootOptions) *cobra.Command {
	so := &o.Serve

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, health checks, metrics and background jobs",
		Long: `serve mounts a read-only JSON API for every configured collection. Requests
need an active key stored in the api_keys collection (fields "key" and
"active"), sent in the X-API-Key header or the api_key parameter.

When validate.schedule is set the integrity pass runs on that cron
schedule and its summary is mailed to validate.report_to.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), o, so)
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.Addr, "addr", so.Addr, "listen address")
	f.StringVar(&so.MetricsPath, "metrics-path", so.MetricsPath, "prometheus endpoint, empty disables")
	f.StringVar(&so.RedisURL, "redis-url", so.RedisURL, "cache API key lookups in Redis instead of memory")
	f.DurationVar(&so.KeyTTL, "api-key-ttl", so.KeyTTL, "how long API key lookups are cached")
	f.DurationVar(&so.ShutdownTimeout, "shutdown-timeout", so.ShutdownTimeout, "graceful shutdown bound")
	f.IntVar(&so.Workers, "workers", so.Workers, "job workers")
	f.StringVar(&so.Mail.Provider, "email-provider", so.Mail.Provider, "email provider: resend|log")
	f.StringVar(&so.Mail.Resend.APIKey, "resend-api-key", so.Mail.Resend.APIKey, "Resend API key")
	f.StringVar(&so.From.FromEmail, "email-from", so.From.FromEmail, "sender address")
	f.StringVar(&so.From.FromName, "email-from-name", so.From.FromName, "sender name")
	return cmd
}

func serve(ctx context.Context, o *rootOptions, so *serveOptions) error {
	log := o.newLogger()

	cfg, err := loadConfig(o.ConfigPath)
	if err != nil {
		return err
	}

	pool, err := o.connect(ctx)
	if err != nil {
		return err
	}
	stores, err := cfg.stores(pool, log)
	if err != nil {
		pool.Close()
		return err
	}

	checks := []scaffold.HealthOption{scaffold.WithReadinessCheck("db", db.Healthcheck(pool))}
	shutdown := []scaffold.RunOption{scaffold.ShutdownHook(db.Shutdown(pool))}

	keyCache := cache.Cache[bool](cache.NewMemory[bool](cache.WithDefaultTTL(so.KeyTTL)))
	if so.RedisURL != "" {
		client, err := redis.Open(ctx, so.RedisURL)
		if err != nil {
			pool.Close()
			return err
		}
		keyCache = cache.NewRedis[bool](client, nil, cache.WithPrefix("scaffold:"), cache.WithRedisDefaultTTL(so.KeyTTL))
		checks = append(checks, scaffold.WithReadinessCheck("redis", redis.Healthcheck(client)))
		shutdown = append(shutdown, scaffold.ShutdownHook(redis.Shutdown(client)))
	}
	shutdown = append(shutdown, scaffold.ShutdownHook(func(context.Context) error { return keyCache.Close() }))
	keys := crud.CachedKeys(crud.StoreKeys(record.NewPostgres(pool, cfg.APIKeys)), keyCache, so.KeyTTL)

	sender, err := provider.New(so.Mail, log)
	if err != nil {
		pool.Close()
		return err
	}
	mail := mailer.NewClient(sender, mailer.WithFrom(so.From.From()), mailer.WithClientLogger(log))

	m := metrics.New()
	v := &validation{
		cfg:     cfg,
		stores:  stores,
		sink:    record.NewStoreSink(record.NewPostgres(pool, notificationsCollection)),
		metrics: m,
		logger:  log,
	}

	// The scheduled task enqueues through the manager it is registered on.
	var jobs deferredSubmitter
	jobOpts := []job.Option{
		job.WithLogger(log),
		job.WithMaxWorkers(so.Workers),
		job.WithCommand(workerMailer, commandReport, sendReport(newComposer(), mail)),
	}
	if cfg.Validate.Schedule != "" {
		jobOpts = append(jobOpts, job.WithSchedule(workerRecords, commandValidate, cfg.Validate.Schedule,
			scheduledValidation(v, &jobs, cfg.Validate.ReportTo)))
	}
	mgr, err := job.NewManager(pool, jobOpts...)
	if err != nil {
		pool.Close()
		return err
	}
	jobs.Submitter = mgr
	checks = append(checks, scaffold.WithReadinessCheck("jobs", job.Healthcheck(mgr)))

	opts := []scaffold.Option{
		scaffold.WithLogger(log),
		scaffold.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		scaffold.WithJobWorker(mgr),
		scaffold.WithMailer(mail),
		scaffold.WithHealthChecks(checks...),
	}
	if so.MetricsPath != "" {
		opts = append(opts, scaffold.WithMetrics(so.MetricsPath, m.Handler()))
	}
	for _, c := range cfg.Collections {
		api, err := crud.NewAPIResource(stores[c.Name], keys,
			crud.WithResponseFields(c.Fields...),
			crud.WithAPIPopulate(c.Populate...),
			crud.WithAPILogger(log),
		)
		if err != nil {
			pool.Close()
			return fmt.Errorf("scaffold: api for %s: %w", c.Name, err)
		}
		opts = append(opts, scaffold.WithAPI(c.apiPath(), api))
		log.InfoContext(ctx, "collection mounted", slog.String("collection", c.Name), slog.String("path", c.apiPath()))
	}

	app := scaffold.New(opts...)
	runOpts := append([]scaffold.RunOption{
		scaffold.Logger(log),
		scaffold.WithContext(ctx),
		scaffold.ShutdownTimeout(so.ShutdownTimeout),
	}, shutdown...)
	return app.Run(so.Addr, runOpts...)
}

// deferredSubmitter forwards to a Submitter set after construction.
type deferredSubmitter struct {
	job.Submitter
}
