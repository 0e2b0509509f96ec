package session

import (
	"fmt"
	"time"
)

// Session holds per-visitor state: the authenticated principal, flash
// messages and cached list filters. Values must survive a JSON round trip
// for the Redis store.
type Session struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`

	dirty bool
	isNew bool
}

// New creates a session. It starts new and dirty so the first response
// persists it.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is attached.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetValue stores val and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue marks the session dirty only if key existed.
func (s *Session) DeleteValue(key string) {
	if s.Values == nil {
		return
	}
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty is called after the session is persisted.
func (s *Session) ClearDirty() {
	s.dirty = false
}

func (s *Session) MarkDirty() {
	s.dirty = true
}

func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) ClearNew() {
	s.isNew = false
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns the value under key as T. Numbers read back from the Redis
// store are float64.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeMismatch, key)
	}

	return typed, nil
}

// ValueOr returns defaultVal when Value fails.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
