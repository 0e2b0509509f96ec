package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/health"
)

func ok(context.Context) error { return nil }

func TestRun(t *testing.T) {
	t.Parallel()

	resp, err := health.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, resp.Status)

	down := errors.New("connection refused")
	resp, err = health.Run(context.Background(), health.Checks{
		"postgres": ok,
		"redis":    func(context.Context) error { return down },
	})
	require.ErrorIs(t, err, health.ErrCheckFailed)
	require.ErrorIs(t, err, down)
	assert.Equal(t, health.StatusUnhealthy, resp.Status)
	assert.Equal(t, health.StatusHealthy, resp.Checks["postgres"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
}

func TestRunTimeout(t *testing.T) {
	t.Parallel()

	_, err := health.Run(context.Background(), health.Checks{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}, health.WithTimeout(10*time.Millisecond))
	assert.ErrorIs(t, err, health.ErrCheckTimeout)
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks health.Checks
		accept string
		status int
		body   string
	}{
		{name: "healthy", checks: health.Checks{"db": ok}, status: http.StatusOK, body: "OK"},
		{
			name:   "unhealthy",
			checks: health.Checks{"db": func(context.Context) error { return errors.New("down") }},
			status: http.StatusServiceUnavailable,
			body:   "Service Unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			health.ReadinessHandler(tt.checks)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestReadinessHandlerJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil)
	health.ReadinessHandler(health.Checks{"db": ok})(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp health.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, health.StatusHealthy, resp.Checks["db"].Status)
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Accept", "application/json")
	health.LivenessHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
