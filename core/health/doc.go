// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	mux.Handle("GET /health/live", health.Liveness())
//	mux.Handle("GET /health/ready", health.Readiness(
//		logger,
//		redis.Healthcheck(redisConn),
//		store.Healthcheck,
//	))
//	mux.Handle("GET /ping", health.NoContent())
//
// Dependency checks must follow the func(context.Context) error signature.
package health
