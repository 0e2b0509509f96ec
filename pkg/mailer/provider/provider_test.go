package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scaffold/pkg/mailer"
	"github.com/dmitrymomot/scaffold/pkg/mailer/provider"
	"github.com/dmitrymomot/scaffold/pkg/mailer/resend"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := provider.New(provider.Config{Provider: "resend", Resend: resend.Config{APIKey: "re_test"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &resend.Sender{}, s)

	for _, name := range []string{"", "log", " LOG "} {
		s, err = provider.New(provider.Config{Provider: name}, nil)
		require.NoError(t, err, name)
		assert.IsType(t, &mailer.LogSender{}, s)
	}

	_, err = provider.New(provider.Config{Provider: "mandrill"}, nil)
	assert.ErrorIs(t, err, mailer.ErrUnsupportedProvider)
}
