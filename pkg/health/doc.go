// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	    "jobs":     job.Healthcheck(manager),
//	}))
//
// Probes answer plain "OK" or "Service Unavailable". Send
// Accept: application/json or ?format=json for per-check details. Checks
// run in parallel under a shared timeout.
package health
