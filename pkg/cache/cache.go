package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = time.Hour

// Cache stores values of type V.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Marshaler encodes values for byte oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var loads singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same cache and key call fn once. Errors from
// fn are returned and nothing is stored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := loads.Do(fmt.Sprintf("%p:%s", c, key), func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := res.(loaded[V])
	_ = c.Set(ctx, key, r.val, r.ttl)
	return r.val, nil
}

func resolveTTL(ttl, fallback time.Duration) time.Duration {
	if ttl == 0 {
		return fallback
	}
	return ttl
}
