// Package redis opens go-redis clients for sessions and caches.
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0", redis.WithPoolSize(20))
//
// Open retries the first ping with a linear backoff, so the service can
// start while Redis is still coming up. [Healthcheck] plugs into the
// readiness endpoint and [Shutdown] into the app's shutdown hooks.
package redis
