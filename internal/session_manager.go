package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scaffold/pkg/cookie"
	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/session"
)

// SessionManager loads sessions from the cookie and keeps the cookie in
// sync with the store.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
	ttl        time.Duration
}

type SessionOption func(*SessionManager)

// NewSessionManager creates a manager. Cookies are written by the default
// cookie manager unless WithSessionCookies is given.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookies:    cookie.New(),
		logger:     logger.NewNope(),
		cookieName: session.DefaultCookieName,
		ttl:        session.DefaultTTL,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets how long a session lives after it is created.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if ttl > 0 {
			sm.ttl = ttl
		}
	}
}

// WithSessionCookies sets the cookie manager, typically one with a secret.
func WithSessionCookies(m *cookie.Manager) SessionOption {
	return func(sm *SessionManager) {
		if m != nil {
			sm.cookies = m
		}
	}
}

func (sm *SessionManager) setLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Load returns the session named by the request cookie, or nil when the
// request has none.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.cookies.Read(r, sm.cookieName)
	switch {
	case errors.Is(err, cookie.ErrNotFound) || token == "":
		return nil, nil
	case errors.Is(err, cookie.ErrBadSig):
		sm.logger.WarnContext(ctx, "session cookie signature mismatch")
		return nil, nil
	case err != nil:
		return nil, err
	}

	sess, err := sm.store.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, nil
	}
	return sess, err
}

// Create stores a new session for the request.
func (sm *SessionManager) Create(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := session.New(uuid.NewString(), token, time.Now().Add(sm.ttl))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// touchInterval limits how often a clean session's activity time is written.
const touchInterval = time.Minute

// Save persists a dirty session. Clean sessions only get their activity
// time refreshed, at most once per touchInterval.
func (sm *SessionManager) Save(ctx context.Context, sess *session.Session) error {
	if !sess.IsDirty() {
		if time.Since(sess.LastActiveAt) < touchInterval {
			return nil
		}
		return sm.store.Touch(ctx, sess.Token, time.Now())
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// Rotate replaces the session token. The old token stops working.
func (sm *SessionManager) Rotate(ctx context.Context, sess *session.Session) error {
	token, err := generateToken()
	if err != nil {
		return err
	}
	old := sess.Token
	sess.Token = token
	sess.MarkDirty()

	if err := sm.store.Create(ctx, sess); err != nil {
		sess.Token = old
		return err
	}
	if err := sm.store.Delete(ctx, old); err != nil {
		sm.logger.WarnContext(ctx, "failed to delete rotated session", slog.Any("error", err))
	}
	sess.ClearDirty()
	return nil
}

// Destroy removes the session from the store.
func (sm *SessionManager) Destroy(ctx context.Context, sess *session.Session) error {
	return sm.store.Delete(ctx, sess.Token)
}

// WriteCookie sets the session cookie.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) {
	sm.cookies.Write(w, sm.cookieName, sess.Token, int(time.Until(sess.ExpiresAt).Seconds()))
}

// ClearCookie expires the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	sm.cookies.Clear(w, sm.cookieName)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// clientIP prefers the first X-Forwarded-For hop over the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
