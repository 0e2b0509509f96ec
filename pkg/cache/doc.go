// Package cache is a typed key-value cache with memory and Redis backends.
//
// It backs API key lookups and HTTP sessions. Set takes a TTL: positive
// expires after the duration, zero uses the backend default, negative
// never expires.
//
//	keys := cache.NewMemory[bool](cache.WithDefaultTTL(time.Minute))
//	ok, err := cache.GetOrSet(ctx, keys, "apikey:"+hash, func(ctx context.Context) (bool, time.Duration, error) {
//	    v, err := lookup(ctx, hash)
//	    return v, 0, err
//	})
//
// Redis values are JSON encoded unless a [Marshaler] is given:
//
//	sessions := cache.NewRedis[session.Session](client, nil, cache.WithPrefix("session"))
package cache
