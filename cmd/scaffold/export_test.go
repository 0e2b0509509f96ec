package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/excel"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func TestExportWorkbook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := record.NewMemory("posts")
	_, err := store.Insert(ctx, record.Record{"id": "p1", "title": "first", "status": "draft"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, record.Record{"id": "p2", "title": "second"})
	require.NoError(t, err)

	t.Run("configured fields", func(t *testing.T) {
		t.Parallel()

		body, err := exportWorkbook(ctx, store, []string{"title"})
		require.NoError(t, err)

		rows, err := excel.ReadFirstSheet(bytes.NewReader(body))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "first", rows[0]["Title"])
	})

	t.Run("every key", func(t *testing.T) {
		t.Parallel()

		body, err := exportWorkbook(ctx, store, nil)
		require.NoError(t, err)

		rows, err := excel.ReadFirstSheet(bytes.NewReader(body))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "draft", rows[0]["Status"])
		assert.Equal(t, "p2", rows[1]["Id"])
	})
}

func TestTopLevelKeys(t *testing.T) {
	t.Parallel()

	got := topLevelKeys([]record.Record{
		{"id": "1", "title": "a"},
		{"id": "2", "author": "u1", "title": "b"},
	})
	assert.Equal(t, []string{"id", "author", "title"}, got)
}
