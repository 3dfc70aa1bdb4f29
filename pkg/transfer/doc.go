// Package transfer bounds concurrent upload/download work and throttles
// bandwidth for large transfers, protecting the process from resource
// exhaustion under heavy load.
//
// Transfers are partitioned into three size classes by a pure function of
// byte size: Small (<10MiB), Medium (10-100MiB), Large (>=100MiB). Each class
// owns an independent counting-permit pool; Large transfers additionally
// share a process-wide bandwidth token bucket.
//
// # Usage
//
//	sched := transfer.NewScheduler(transfer.Config{
//		SmallSlots:  50,
//		MediumSlots: 20,
//		LargeSlots:  5,
//	})
//
//	permit, err := sched.AcquireDownload(ctx, fileSize)
//	if err != nil {
//		return err // context cancelled while waiting
//	}
//	defer permit.Release()
//
//	_, err = io.Copy(w, permit.Reader(ctx, file))
//
// Blocking acquisition waits until a slot in the matching class frees; it has
// no timeout of its own, so callers needing bounded wait pass a context with
// a deadline. TryAcquireDownload is the non-blocking probe variant.
//
// # Permit Lifecycle
//
// A Permit is exclusively owned by the caller that acquired it and must be
// released on every exit path: normal completion, handler error, and client
// cancellation. Always pair an acquire with defer permit.Release(); Release
// is idempotent. A leaked permit permanently shrinks its class's capacity
// until process restart.
//
// # Bandwidth
//
// Permit.Reader and Permit.Writer meter each chunk against the shared token
// bucket for Large permits and return the stream unchanged for other classes.
// The low Large concurrency cap is the primary defense; the bucket is the
// secondary control.
package transfer
