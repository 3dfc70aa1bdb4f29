// Package breaker implements a process-local circuit breaker for guarding
// calls to an unreliable dependency, such as the shared Redis store used for
// distributed rate limiting.
//
// The breaker is a three-state machine:
//
//   - Closed: calls flow through; consecutive failures are counted.
//   - Open: calls fail fast; entered after FailureThreshold consecutive failures.
//   - HalfOpen: entered lazily once RecoveryTimeout has elapsed since the last
//     failure; calls flow through as recovery probes. SuccessThreshold
//     consecutive successes close the circuit, any failure reopens it.
//
// There is no background timer: the Open to HalfOpen transition is evaluated
// on each Allow call. All operations are synchronous, safe for concurrent use,
// and never block, so they can be called from any request goroutine.
//
// # Usage
//
//	cb := breaker.New("redis", breaker.Config{
//		FailureThreshold: 5,
//		RecoveryTimeout:  30 * time.Second,
//		SuccessThreshold: 2,
//	})
//
//	err := cb.Do(ctx, func(ctx context.Context) error {
//		return client.Incr(ctx, key).Err()
//	})
//	if errors.Is(err, breaker.ErrCircuitOpen) {
//		// dependency is down; decide per call site whether to
//		// fail open (allow) or fail closed (reject)
//	}
//
// The breaker only gates: it never retries, and it leaves the fail-open
// versus fail-closed decision to the caller.
package breaker
