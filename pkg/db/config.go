package db

import "time"

// Config holds pool settings. The tags are read with caarlos0/env.
type Config struct {
	ConnectionString string `env:"DATABASE_CONN_URL"`
	MigrationsTable  string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Connect retries with a linear backoff: RetryInterval, then twice
	// that, and so on.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}
