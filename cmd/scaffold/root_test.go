package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://localhost/app")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("DATABASE_RETRY_INTERVAL", "2s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("S3_PATH_STYLE", "true")

	o, err := loadOptions()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/app", o.DB.ConnectionString)
	assert.Equal(t, int32(50), o.DB.MaxOpenConns)
	assert.Equal(t, 2*time.Second, o.DB.RetryInterval)
	assert.Equal(t, ":9090", o.Serve.Addr)
	assert.True(t, o.S3.PathStyle)

	t.Run("defaults from tags", func(t *testing.T) {
		assert.Equal(t, int32(2), o.DB.MinConns)
		assert.Equal(t, 3, o.DB.RetryAttempts)
		assert.Equal(t, 10, o.Serve.Workers)
		assert.Equal(t, time.Minute, o.Serve.KeyTTL)
	})
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("LOG_LEVEL", "warn")

	o, err := loadOptions()
	require.NoError(t, err)
	require.Equal(t, "warn", o.Log.Level)

	cmd := rootCmd(o, nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--log-level", "error", "migrate", "--table", "versions"})

	err = cmd.Execute()
	assert.ErrorIs(t, err, errDatabaseURL)
	assert.Equal(t, "error", o.Log.Level)
	assert.Equal(t, "versions", o.DB.MigrationsTable)
}

func TestInvalidEnvironmentFailsCommands(t *testing.T) {
	t.Setenv("DATABASE_RETRY_INTERVAL", "soon")

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"migrate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorContains(t, err, "scaffold: environment")
}
