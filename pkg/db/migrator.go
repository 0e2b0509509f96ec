package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded record store migrations.
func Migrations() fs.FS {
	sub, _ := fs.Sub(migrations, "migrations")
	return sub
}

// Migrate applies the record store migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	return MigrateFS(ctx, pool, Migrations(), table, log)
}

// MigrateFS applies the goose migrations found at the root of fsys.
func MigrateFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = "schema_migrations"
	}

	// The sql.DB shares the pool's connections; closing it would close them.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log})
	goose.SetTableName(table)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only; goose returns the error to the caller.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
