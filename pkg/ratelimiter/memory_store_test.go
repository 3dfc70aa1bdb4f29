package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/ratelimiter"
)

// manualClock drives MemoryStore time in tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStoreIncr(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimiter.NewMemoryStore()

	n, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Independent keys keep independent counts.
	n, err = store.Incr(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newManualClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreClock(clock.Now))

	n, err := store.Incr(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// A later increment inside the window must not extend it: the window
	// still ends 10s after it opened, not 10s after the last increment.
	clock.Advance(9 * time.Second)
	n, err = store.Incr(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	clock.Advance(1 * time.Second)
	n, err = store.Incr(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "window must reset 10s after it opened")
}

func TestMemoryStoreContextCancelled(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Incr(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreCleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newManualClock()
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithMemoryStoreClock(clock.Now),
		ratelimiter.WithCleanupInterval(10*time.Millisecond),
	)

	for _, key := range []string{"a", "b", "c"} {
		_, err := store.Incr(ctx, key, time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Stats().ActiveWindows)

	go func() { _ = store.Start(ctx) }()
	t.Cleanup(func() { _ = store.Stop() })

	clock.Advance(2 * time.Second)

	assert.Eventually(t, func() bool {
		return store.Stats().ActiveWindows == 0
	}, time.Second, 10*time.Millisecond, "expired windows should be swept")

	stats := store.Stats()
	assert.Equal(t, int64(3), stats.WindowsCreated)
	assert.Equal(t, int64(3), stats.WindowsExpired)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Minute))

	assert.Error(t, store.Stop(), "stop before start")
	assert.Error(t, store.Healthcheck(context.Background()), "unhealthy until started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = store.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return store.Healthcheck(context.Background()) == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Stop())
}
