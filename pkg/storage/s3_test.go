package storage_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/storage"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := storage.New(storage.Config{})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)

	s, err := storage.New(storage.Config{
		Bucket:    "exports",
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = s.Put(context.Background(), "", "text/plain", nil)
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
}

func TestPresignedURL(t *testing.T) {
	t.Parallel()

	s, err := storage.New(storage.Config{Bucket: "exports", AccessKey: "key", SecretKey: "secret"})
	require.NoError(t, err)

	u, err := s.URL(context.Background(), "posts/export.xlsx", "posts.xlsx", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "exports")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=60")
}

func TestArchiveKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	key := storage.ArchiveKey("exports/../posts", "../posts export.xlsx", at)

	assert.Regexp(t, regexp.MustCompile(`^exports/posts/2026/03/09/[0-9a-f-]{36}-posts_export\.xlsx$`), key)
	assert.NotEqual(t, key, storage.ArchiveKey("exports/posts", "posts export.xlsx", at))
}

func TestConfigEnabled(t *testing.T) {
	t.Parallel()
	assert.False(t, storage.Config{}.Enabled())
	assert.True(t, storage.Config{Bucket: "b"}.Enabled())
}
