package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound = errors.New("cookie: not found")
	ErrBadSig   = errors.New("cookie: invalid signature")
)

// MinSecretLength is the shortest secret that enables signing.
const MinSecretLength = 32

// Manager reads and writes cookies with shared attributes.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

type Option func(*Manager)

func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signing. Shorter secrets are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLength {
			m.secret = []byte(secret)
		}
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// Signed reports whether values are signed.
func (m *Manager) Signed() bool {
	return m.secret != nil
}

// Read returns the value of the named cookie.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	if m.secret == nil {
		return c.Value, nil
	}
	return m.verify(c.Value)
}

// Write sets the named cookie for maxAge seconds.
func (m *Manager) Write(w http.ResponseWriter, name, value string, maxAge int) {
	if m.secret != nil {
		value = m.sign(value)
	}
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Clear expires the named cookie.
func (m *Manager) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// sign encodes value as base64(value).base64(hmac).
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(raw string) (string, error) {
	encoded, encodedSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
