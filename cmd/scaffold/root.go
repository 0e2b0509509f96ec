package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scaffold/middlewares"
	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/db"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/storage"
)

var errDatabaseURL = errors.New("scaffold: database url is required (--database-url or DATABASE_CONN_URL)")

// rootOptions is the configuration shared by every command. It is read
// from the environment first and the flags override it.
type rootOptions struct {
	ConfigPath string `env:"SCAFFOLD_CONFIG" envDefault:"scaffold.yaml"`
	DB         db.Config
	Log        logger.Config
	Serve      serveOptions
	S3         storage.Config
}

// loadOptions parses the environment into rootOptions.
func loadOptions() (*rootOptions, error) {
	o := &rootOptions{}
	if err := env.Parse(o); err != nil {
		return o, fmt.Errorf("scaffold: environment: %w", err)
	}
	return o, nil
}

func newRootCmd() *cobra.Command {
	o, err := loadOptions()
	return rootCmd(o, err)
}

// rootCmd builds the command tree on o. A non-nil envErr fails every
// command before it runs.
func rootCmd(o *rootOptions, envErr error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Serve and maintain record collections",
		Long: `scaffold exposes record collections stored in PostgreSQL as a read-only
JSON API guarded by API keys, and runs their maintenance tasks.

Every flag has an environment variable (SCAFFOLD_CONFIG, DATABASE_CONN_URL,
LOG_LEVEL, ...). Pool tuning is environment only: DATABASE_MAX_OPEN_CONNS,
DATABASE_MIN_CONNS, DATABASE_RETRY_ATTEMPTS, DATABASE_RETRY_INTERVAL and the
other DATABASE_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return envErr
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.ConfigPath, "config", "c", o.ConfigPath, "collections file")
	pf.StringVar(&o.DB.ConnectionString, "database-url", o.DB.ConnectionString, "PostgreSQL connection url")
	pf.StringVar(&o.Log.Level, "log-level", o.Log.Level, "log level: debug|info|warn|error")
	pf.StringVar(&o.Log.Format, "log-format", o.Log.Format, "log format: json|text")
	pf.StringVar(&o.Log.Sentry.DSN, "sentry-dsn", o.Log.Sentry.DSN, "report errors to Sentry")
	pf.StringVar(&o.Log.Sentry.Environment, "sentry-env", o.Log.Sentry.Environment, "Sentry environment")

	cmd.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newValidateCmd(o),
		newExportCmd(o),
	)
	return cmd
}

func (o *rootOptions) newLogger() *slog.Logger {
	return logger.New(o.Log, middlewares.RequestIDExtractor(), crud.LogExtractor())
}

func (o *rootOptions) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if o.DB.ConnectionString == "" {
		return nil, errDatabaseURL
	}
	return db.Connect(ctx, o.DB)
}
