package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/cache"
)

// Store persists sessions by token.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound or ErrExpired.
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	Touch(ctx context.Context, token string, lastActiveAt time.Time) error
}

// CacheStore keeps sessions in a cache, each entry expiring with its
// session. A memory cache suits a single process; a Redis cache shares
// sessions across processes.
type CacheStore struct {
	cache cache.Cache[Session]
}

// NewCacheStore wraps c.
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{cache: c}
}

func (s *CacheStore) Create(ctx context.Context, sess *Session) error {
	return s.put(ctx, sess)
}

func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	sess, err := s.cache.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = s.cache.Delete(ctx, token)
		return nil, ErrExpired
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	return &sess, nil
}

func (s *CacheStore) Update(ctx context.Context, sess *Session) error {
	return s.put(ctx, sess)
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, token)
}

func (s *CacheStore) Touch(ctx context.Context, token string, lastActiveAt time.Time) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.LastActiveAt = lastActiveAt
	return s.put(ctx, sess)
}

func (s *CacheStore) put(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	return s.cache.Set(ctx, sess.Token, *sess, ttl)
}

var _ Store = (*CacheStore)(nil)
