package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores encoded values in Redis. Keys are "{prefix}:{key}" when a
// prefix is set.
type Redis[V any] struct {
	client     redis.UniversalClient
	marshaler  Marshaler[V]
	prefix     string
	defaultTTL time.Duration
}

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix     string
	defaultTTL time.Duration
}

func WithPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		c.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the TTL used for zero TTL writes.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.defaultTTL = d
	}
}

// NewRedis creates a Redis cache. A nil marshaler means JSON.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	cfg := redisConfig{defaultTTL: DefaultTTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Redis[V]{client: client, marshaler: m, prefix: cfg.prefix, defaultTTL: cfg.defaultTTL}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	// Redis treats 0 as no expiry.
	return r.client.Set(ctx, r.key(key), data, max(resolveTTL(ttl, r.defaultTTL), 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

// Clear deletes the prefixed keys, or the whole database without a prefix.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close leaves the client open; its owner closes it.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)
