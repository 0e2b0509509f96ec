package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
validate:
  schedule: "0 3 * * *"
  report_to: ops@example.com
collections:
  - name: posts
    path: /v1/posts
    fields: [title, author]
    mandatory: [title]
    references:
      - field: author
        target: users
      - field: parent
        target: posts
  - name: users
    mandatory: [email]
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "api_keys", cfg.APIKeys)
	assert.Equal(t, "0 3 * * *", cfg.Validate.Schedule)
	require.Len(t, cfg.Collections, 2)
	assert.Equal(t, "/v1/posts", cfg.Collections[0].apiPath())
	assert.Equal(t, "/api/users", cfg.Collections[1].apiPath())
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: errNoCollections},
		{name: "unknown target", raw: "collections:\n  - name: posts\n    references:\n      - {field: author, target: users}\n", want: errUnknownCollection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseConfig([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig([]byte("collections:\n  - name: a\n  - name: a\n"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig([]byte("collections: ["))
		assert.Error(t, err)
	})
}

func TestConfigStores(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	stores, err := cfg.stores(nil, nil)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "posts", stores["posts"].Collection())
	assert.Equal(t, "users", stores["users"].Collection())

	schema := cfg.Collections[0].schema(stores)
	assert.Equal(t, []string{"title"}, schema.Mandatory)
	require.Len(t, schema.References, 2)
	assert.Equal(t, "users", schema.References[0].Target.Collection())
	assert.Equal(t, "posts", schema.References[1].Target.Collection())
}

func TestConfigStoresCycle(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]byte(`
collections:
  - name: a
    references: [{field: b_id, target: b}]
  - name: b
    references: [{field: a_id, target: a}]
`))
	require.NoError(t, err)

	_, err = cfg.stores(nil, nil)
	assert.ErrorIs(t, err, errReferenceCycle)
}
