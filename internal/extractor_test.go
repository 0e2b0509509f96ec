package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	app := New()
	r := httptest.NewRequest(http.MethodGet, "/?user=q-user", nil)
	r.Header.Set("Authorization", "Bearer tok")
	c := newContext(httptest.NewRecorder(), r, app)

	tests := []struct {
		name    string
		sources []ExtractorSource
		want    string
		ok      bool
	}{
		{"first hit wins", []ExtractorSource{FromHeader("X-User"), FromQuery("user"), FromBearerToken()}, "q-user", true},
		{"bearer", []ExtractorSource{FromBearerToken()}, "tok", true},
		{"no session configured", []ExtractorSource{FromUserID(), FromSession("uid")}, "", false},
		{"nothing", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewExtractor(tt.sources...).Extract(c)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
