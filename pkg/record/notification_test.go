package record_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/query"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

func TestStoreSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := record.NewMemory("notifications")
	sink := record.NewStoreSink(store)

	require.NoError(t, sink.Notify(ctx, record.Notification{
		Resource: "posts", RecordID: "p1", Field: "title",
		Kind: record.KindMissingMandatory, Message: "title is required",
	}))
	require.NoError(t, sink.Notify(ctx, record.Notification{
		Resource: "users", RecordID: "u1", Kind: record.KindCustom, Message: "stale",
	}))

	posts, err := store.FindAll(ctx, query.Eq{Field: "resource", Value: "posts"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0]["record_id"])
	assert.Equal(t, "missing_mandatory", posts[0]["kind"])
	assert.Equal(t, "title", posts[0]["field"])

	require.NoError(t, sink.Clear(ctx, "posts"))

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	if n != 1 {
		t.Errorf("Count() after Clear = %d, want 1", n)
	}
}

func TestValidateAllWithStoreSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	posts := record.NewMemory("posts")
	_, err := posts.Insert(ctx, record.Record{"title": "ok"})
	require.NoError(t, err)
	_, err = posts.Insert(ctx, record.Record{"body": "no title"})
	require.NoError(t, err)

	notes := record.NewMemory("notifications")
	report, err := record.ValidateAll(ctx, posts, record.Schema{Mandatory: []string{"title"}},
		record.NewStoreSink(notes), record.ValidateOptions{Throttle: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Notified)

	// A second run replaces the findings of the first.
	_, err = record.ValidateAll(ctx, posts, record.Schema{Mandatory: []string{"title"}},
		record.NewStoreSink(notes), record.ValidateOptions{Throttle: -1})
	require.NoError(t, err)

	n, err := notes.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
