package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared Redis instance, making limits hold
// across all processes that point at the same store.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Incr performs the atomic window-counter protocol: INCR, then EXPIRE NX when
// the increment created the key. INCR is atomic, so exactly one concurrent
// first-request observes n == 1 and performs the TTL set; NX additionally
// guards against resetting a TTL that already exists.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}

	if n == 1 {
		if err := s.client.ExpireNX(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("set expiry on %s: %w", key, err)
		}
	}

	return n, nil
}
