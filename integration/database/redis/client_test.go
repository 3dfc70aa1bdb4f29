package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/gatekit/integration/database/redis"
)

func TestConnectValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(ctx, redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(ctx, redis.Config{ConnectionURL: "http://localhost:6379"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		// Port 1 is reserved and refuses connections immediately.
		_, err := redis.Connect(ctx, redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  1,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}
