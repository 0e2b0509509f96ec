//go:build integration

package storage_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/storage"
)

func TestS3Archive(t *testing.T) {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_ENDPOINT not set")
	}

	s, err := storage.New(storage.Config{
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Endpoint:  endpoint,
		PathStyle: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	info, err := s.Put(ctx, "it/report.csv", "text/csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Delete(ctx, info.Key) })

	r, err := s.Get(ctx, info.Key)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(body))

	require.NoError(t, s.Archiver("it")(ctx, "export.xlsx", "application/octet-stream", []byte("x")))

	_, err = s.Get(ctx, "it/missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
