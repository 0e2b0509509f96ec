package session

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/cache"
	"github.com/dmitrymomot/scaffold/pkg/redis"
)

const (
	// DefaultCookieName names the session cookie.
	DefaultCookieName = "application.sid"

	// DefaultTTL is how long a session lives without activity.
	DefaultTTL = 14400 * time.Second

	keyPrefix = "session"
)

// Storage describes where sessions live, parsed from a URL such as
// "redis://localhost:6379/0?ttl=14400". Any other value means memory.
type Storage struct {
	// RedisURL is empty for memory storage.
	RedisURL string
	TTL      time.Duration
}

// ParseStorage parses a SESSION_STORAGE value. The ttl query parameter is
// in seconds and removed from the Redis URL.
func ParseStorage(raw string) (Storage, error) {
	st := Storage{TTL: DefaultTTL}
	if !strings.HasPrefix(raw, "redis://") && !strings.HasPrefix(raw, "rediss://") {
		return st, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return st, fmt.Errorf("%w: %v", ErrInvalidStorage, err)
	}
	q := u.Query()
	if v := q.Get("ttl"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return st, fmt.Errorf("%w: ttl %q", ErrInvalidStorage, v)
		}
		st.TTL = time.Duration(secs) * time.Second
	}
	q.Del("ttl")
	u.RawQuery = q.Encode()
	st.RedisURL = u.String()
	return st, nil
}

// Open builds the Store described by st. The returned closer releases the
// Redis client or stops the memory cache.
func (st Storage) Open(ctx context.Context, opts ...redis.Option) (Store, func(context.Context) error, error) {
	if st.RedisURL == "" {
		c := cache.NewMemory[Session](cache.WithDefaultTTL(st.TTL))
		return NewCacheStore(c), func(context.Context) error { return c.Close() }, nil
	}

	client, err := redis.Open(ctx, st.RedisURL, opts...)
	if err != nil {
		return nil, nil, err
	}
	c := cache.NewRedis[Session](client, nil, cache.WithPrefix(keyPrefix), cache.WithRedisDefaultTTL(st.TTL))
	return NewCacheStore(c), redis.Shutdown(client), nil
}
