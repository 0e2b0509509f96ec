package record_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/record"
)

func TestValidationErrorLazy(t *testing.T) {
	t.Parallel()

	var verr *record.ValidationError
	verr = record.AttachError(verr, "")
	assert.Nil(t, verr)

	verr = record.AttachError(verr, "first")
	verr = record.AttachError(verr, "second")
	assert.Equal(t, []string{"first", "second"}, verr.Messages())
	assert.Contains(t, verr.Error(), "first; second")

	assert.Nil(t, record.NewValidationError())
	assert.Equal(t, []string{"a"}, record.NewValidationError("a").Messages())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tooShort := record.ValidatorFunc(func(_ context.Context, r record.Record) error {
		if len(r.String("title")) < 3 {
			return record.NewValidationError("Title is too short")
		}
		return nil
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		err := record.Validate(ctx, record.Record{"title": "long enough"}, record.Required("title"), tooShort)
		require.NoError(t, err)
	})

	t.Run("messages are merged", func(t *testing.T) {
		t.Parallel()
		err := record.Validate(ctx, record.Record{"title": "ab"}, record.Required("title", "body"), tooShort)
		verr, ok := record.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, []string{`Field "body" is required`, "Title is too short"}, verr.Messages())
	})

	t.Run("validator failure is not a validation error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		err := record.Validate(ctx, record.Record{}, record.ValidatorFunc(func(context.Context, record.Record) error {
			return boom
		}))
		require.ErrorIs(t, err, boom)
		_, ok := record.AsValidationError(err)
		assert.False(t, ok)
	})
}
