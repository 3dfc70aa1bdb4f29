package ratelimiter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/breaker"
	"github.com/dmitrymomot/gatekit/pkg/ratelimiter"
)

// recordingStore captures keys and windows passed to Incr.
type recordingStore struct {
	mu      sync.Mutex
	keys    []string
	windows []time.Duration
	counts  map[string]int64
	err     error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{counts: make(map[string]int64)}
}

func (s *recordingStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = append(s.keys, key)
	s.windows = append(s.windows, window)

	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.New(nil)
	assert.ErrorIs(t, err, ratelimiter.ErrNilStore)

	_, err = ratelimiter.New(newRecordingStore(),
		ratelimiter.WithClass(ratelimiter.ClassGlobal, ratelimiter.Config{Limit: 0, Window: time.Second}))
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestCheckEnforcesClassQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore())
	require.NoError(t, err)

	id := ratelimiter.ByIPPath("203.0.113.7", "/auth/login")

	// Login class allows 5 per minute.
	for i := 1; i <= 5; i++ {
		result, err := limiter.Check(ctx, ratelimiter.ClassLogin, id)
		require.NoError(t, err)
		assert.True(t, result.Allowed(), "request %d should be allowed", i)
		assert.Equal(t, int64(i), result.Count)
		assert.Equal(t, 5-i, result.Remaining)
	}

	result, err := limiter.Check(ctx, ratelimiter.ClassLogin, id)
	require.NoError(t, err)
	assert.False(t, result.Allowed())
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, time.Minute, result.RetryAfter())

	// Rejected requests keep counting.
	result, err = limiter.Check(ctx, ratelimiter.ClassLogin, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Count)
}

func TestCheckIsolatesIdentities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := limiter.Check(ctx, ratelimiter.ClassLogin, ratelimiter.ByIPPath("203.0.113.7", "/auth/login"))
		require.NoError(t, err)
	}

	// A different IP has an untouched budget.
	result, err := limiter.Check(ctx, ratelimiter.ClassLogin, ratelimiter.ByIPPath("203.0.113.8", "/auth/login"))
	require.NoError(t, err)
	assert.True(t, result.Allowed())
	assert.Equal(t, int64(1), result.Count)
}

func TestCheckUnknownClass(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore())
	require.NoError(t, err)

	_, err = limiter.Check(context.Background(), ratelimiter.Class("bogus"), ratelimiter.ByIP("1.2.3.4"))
	assert.ErrorIs(t, err, ratelimiter.ErrUnknownClass)
}

func TestCheckKeyNamespace(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	limiter, err := ratelimiter.New(store)
	require.NoError(t, err)

	_, err = limiter.Check(context.Background(), ratelimiter.ClassPublic, ratelimiter.ByIP("203.0.113.7"))
	require.NoError(t, err)

	require.Len(t, store.keys, 1)
	assert.Equal(t, "ratelimit:public:ip:203.0.113.7", store.keys[0])
	assert.Equal(t, time.Minute, store.windows[0])
}

func TestCheckClassOverride(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
		ratelimiter.WithClass(ratelimiter.ClassGlobal, ratelimiter.Config{Limit: 2, Window: time.Second}))
	require.NoError(t, err)

	ctx := context.Background()
	id := ratelimiter.ByIP("203.0.113.7")

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, ratelimiter.ClassGlobal, id)
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	}

	result, err := limiter.Check(ctx, ratelimiter.ClassGlobal, id)
	require.NoError(t, err)
	assert.False(t, result.Allowed())
}

func TestCheckStoreFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("store error surfaces as unavailable", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		store.err = errors.New("connection refused")

		limiter, err := ratelimiter.New(store)
		require.NoError(t, err)

		_, err = limiter.Check(ctx, ratelimiter.ClassAPI, ratelimiter.ByUser("42"))
		assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
	})

	t.Run("open circuit short-circuits the store", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		store.err = errors.New("connection refused")

		cb := breaker.New("redis", breaker.Config{FailureThreshold: 2, RecoveryTimeout: time.Hour})
		limiter, err := ratelimiter.New(store, ratelimiter.WithBreaker(cb))
		require.NoError(t, err)

		id := ratelimiter.ByUser("42")
		for i := 0; i < 2; i++ {
			_, err := limiter.Check(ctx, ratelimiter.ClassAPI, id)
			require.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
		}
		require.Equal(t, breaker.StateOpen, cb.State())

		// With the circuit open the store is not called again.
		store.mu.Lock()
		calls := len(store.keys)
		store.mu.Unlock()

		_, err = limiter.Check(ctx, ratelimiter.ClassAPI, id)
		assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
		assert.ErrorIs(t, err, breaker.ErrCircuitOpen)

		store.mu.Lock()
		assert.Equal(t, calls, len(store.keys))
		store.mu.Unlock()
	})
}
