// Package ratelimiter provides distributed fixed-window rate limiting with
// pluggable storage backends.
//
// Counters live in a shared store (Redis in production, in-memory for tests
// and single-node deployments) so limits hold across concurrent processes.
// Each check performs one atomic increment; when the increment creates the
// key, the window TTL is attached with a set-if-absent expiry so a concurrent
// creator can never reset an existing window. Rejected requests still count,
// preventing limit bypass by retrying.
//
// # Core Types
//
// Store is the storage contract: Incr(ctx, key, window) returning the
// post-increment count. RedisStore and MemoryStore implement it.
//
// Identity names who is being limited: ByIP, ByUser, or ByIPPath. Each class
// of traffic (login, upload, export, api, public, global) carries a fixed
// Config{Limit, Window}; only the global per-IP class is externally tunable.
//
// # Usage
//
//	store := ratelimiter.NewRedisStore(client)
//	cb := breaker.New("redis", breaker.Config{})
//
//	limiter, err := ratelimiter.New(store,
//		ratelimiter.WithBreaker(cb),
//		ratelimiter.WithClass(ratelimiter.ClassGlobal, ratelimiter.Config{
//			Limit:  cfg.GlobalRPS,
//			Window: time.Second,
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Check(ctx, ratelimiter.ClassLogin, ratelimiter.ByIPPath(ip, r.URL.Path))
//	switch {
//	case errors.Is(err, ratelimiter.ErrStoreUnavailable):
//		// shared store is down: fail open, availability over enforcement
//	case err != nil:
//		// unexpected
//	case !result.Allowed():
//		// reject with 429, Retry-After = result.RetryAfter()
//	}
//
// # Failure Semantics
//
// Store access is gated by an optional circuit breaker. When the store is
// unreachable or the circuit is open, Check returns ErrStoreUnavailable and
// the caller decides whether to fail open or closed; the HTTP middleware in
// this module fails open so a store outage never takes user traffic down
// with it.
//
// # Key Namespace
//
// All keys live under a fixed prefix ("ratelimit" by default), sub-namespaced
// by class and identity, e.g. "ratelimit:login:ip_path:203.0.113.7:_auth_login".
// Operators can inspect or flush them without touching unrelated data.
package ratelimiter
