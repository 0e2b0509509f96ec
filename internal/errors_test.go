package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	err := NewHTTPError(http.StatusServiceUnavailable, "", WithError(cause), WithTitle("Oops"), WithRequestID("r1"))

	assert.Equal(t, "Service Unavailable", err.Error())
	assert.Equal(t, "Service Unavailable", err.StatusText())
	assert.Equal(t, "Oops", err.Title)
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", err)
	got := AsHTTPError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.RequestID)
	assert.Nil(t, AsHTTPError(cause))
}
