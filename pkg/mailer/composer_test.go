package mailer_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/mailer"
)

var templates = fstest.MapFS{
	"layouts/base.html": &fstest.MapFile{Data: []byte(`<html><body>{{.Content}}</body></html>`)},
	"welcome.md": &fstest.MapFile{Data: []byte("---\nsubject: Welcome {{.Name}}\n---\nHello **{{.Name}}**!\n")},
	"plain.md":   &fstest.MapFile{Data: []byte("Just text.\n")},
	"broken.md":  &fstest.MapFile{Data: []byte("---\nsubject: x\nno closing delimiter\n")},
	"badyaml.md": &fstest.MapFile{Data: []byte("---\n: [\n---\nbody\n")},
}

func TestComposeWithLayout(t *testing.T) {
	t.Parallel()

	c := mailer.NewComposer(templates)
	m, err := c.Compose("welcome.md", "base.html", map[string]string{"Name": "Ann"})
	require.NoError(t, err)

	assert.Equal(t, "Welcome Ann", m.Subject)
	assert.Contains(t, m.HTML, "<html><body><p>Hello <strong>Ann</strong>!</p>")
	assert.Equal(t, "Hello **Ann**!\n", m.Text)
}

func TestComposeWithoutFrontmatter(t *testing.T) {
	t.Parallel()

	c := mailer.NewComposer(templates, mailer.WithFallbackSubject("Notification"))
	m, err := c.Compose("plain.md", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Notification", m.Subject)
	assert.Equal(t, "<p>Just text.</p>\n", m.HTML)
}

func TestComposeErrors(t *testing.T) {
	t.Parallel()

	c := mailer.NewComposer(templates)

	_, err := c.Compose("missing.md", "", nil)
	assert.ErrorIs(t, err, mailer.ErrTemplateNotFound)

	_, err = c.Compose("plain.md", "missing.html", nil)
	assert.ErrorIs(t, err, mailer.ErrLayoutNotFound)

	_, err = c.Compose("broken.md", "", nil)
	assert.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)

	_, err = c.Compose("badyaml.md", "", nil)
	assert.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)
}
