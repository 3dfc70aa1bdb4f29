package ratelimiter

import (
	"context"
	"time"
)

// Store is the storage contract for distributed window counters.
//
// Incr atomically increments the counter at key and returns the
// post-increment value. When the increment creates the key, the
// implementation attaches the window duration as the key's expiry using a
// set-if-absent operation, so an expiry established by a concurrent creator
// is never reset. This increment-then-conditionally-expire sequence is the
// only mutation implementations may perform; in particular, no
// read-modify-write outside the store's atomic primitive.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
