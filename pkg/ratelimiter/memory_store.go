package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// window is a single fixed counting window for one key.
type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore implements Store using in-process storage. Intended for tests
// and single-node deployments; it provides the same window semantics as
// RedisStore but shares nothing across processes.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// Configuration
	cleanupInterval time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	now             func() time.Time

	// State management
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// Observability metrics
	windowsCreated atomic.Int64
	windowsExpired atomic.Int64
}

// MemoryStoreStats provides observability metrics for monitoring and debugging.
type MemoryStoreStats struct {
	WindowsCreated int64 // Total number of windows opened
	WindowsExpired int64 // Total number of expired windows removed
	ActiveWindows  int   // Current number of live windows
	IsRunning      bool  // Whether the cleanup goroutine is running
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for removing expired windows.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithMemoryStoreShutdownTimeout sets the graceful shutdown timeout.
func WithMemoryStoreShutdownTimeout(timeout time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if timeout > 0 {
			ms.shutdownTimeout = timeout
		}
	}
}

// WithMemoryStoreLogger sets the logger for internal operations.
func WithMemoryStoreLogger(logger *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if logger != nil {
			ms.logger = logger
		}
	}
}

// WithMemoryStoreClock overrides the time source. Intended for tests.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates a new in-memory store.
// Call Start() to begin background cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: 5 * time.Minute,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Incr increments the counter for key within its current window, opening a
// fresh window when none exists or the previous one has expired. Mirrors the
// Redis TTL behavior: the window length is fixed when the window opens and
// later increments never extend it.
func (ms *MemoryStore) Incr(ctx context.Context, key string, windowLen time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	w, exists := ms.windows[key]

	if !exists || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(windowLen)}
		ms.windows[key] = w
		ms.windowsCreated.Add(1)
	}

	w.count++
	return w.count, nil
}

// Start begins the background cleanup goroutine. This is a blocking operation
// that runs until the context is cancelled. Use Run() for errgroup pattern or
// call this in a goroutine.
func (ms *MemoryStore) Start(ctx context.Context) error {
	ms.mu.Lock()
	if ms.cancel != nil {
		ms.mu.Unlock()
		return fmt.Errorf("memory store already started")
	}

	if ms.cleanupInterval <= 0 {
		ms.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v (use WithCleanupInterval to configure)", ms.cleanupInterval)
	}

	ms.ctx, ms.cancel = context.WithCancel(ctx)
	ms.mu.Unlock()

	ms.running.Store(true)
	defer ms.running.Store(false)

	ms.logger.InfoContext(ms.ctx, "memory store cleanup started",
		slog.Duration("cleanup_interval", ms.cleanupInterval))

	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.ctx.Done():
			ms.logger.InfoContext(context.Background(), "memory store cleanup stopping")
			return ms.ctx.Err()
		case <-ticker.C:
			ms.cleanupWithWait()
		}
	}
}

// Stop gracefully shuts down the background cleanup with a timeout.
// Returns an error if the shutdown timeout is exceeded.
func (ms *MemoryStore) Stop() error {
	ms.mu.Lock()
	if ms.cancel == nil {
		ms.mu.Unlock()
		return fmt.Errorf("memory store not started")
	}

	cancel := ms.cancel
	ms.cancel = nil
	ms.mu.Unlock()

	cancel()

	ctx, ctxCancel := context.WithTimeout(context.Background(), ms.shutdownTimeout)
	defer ctxCancel()

	done := make(chan struct{})
	go func() {
		ms.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ms.logger.InfoContext(context.Background(), "memory store stopped cleanly")
		return nil
	case <-ctx.Done():
		ms.logger.WarnContext(context.Background(), "memory store shutdown timeout exceeded",
			slog.Duration("timeout", ms.shutdownTimeout))
		return fmt.Errorf("shutdown timeout exceeded after %s", ms.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// Returns a function that starts the cleanup, monitors context cancellation,
// and performs graceful shutdown when the context is cancelled.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- ms.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = ms.Stop() // Ignore stop error in normal shutdown
			<-errCh       // Wait for Start() to exit
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// cleanupWithWait wraps removeExpired so Stop can wait for an in-progress sweep.
func (ms *MemoryStore) cleanupWithWait() {
	ms.mu.Lock()
	if ms.cancel == nil {
		ms.mu.Unlock()
		return
	}
	ms.wg.Add(1)
	ms.mu.Unlock()

	defer ms.wg.Done()
	ms.removeExpired()
}

// removeExpired drops windows whose reset time has passed. Expired windows
// are already invisible to Incr; removal only frees memory.
func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()

	removed := 0
	for key, w := range ms.windows {
		if !now.Before(w.resetAt) {
			delete(ms.windows, key)
			removed++
		}
	}

	if removed > 0 {
		ms.windowsExpired.Add(int64(removed))
	}
}

// Stats returns current memory store statistics for observability and monitoring.
// This method is thread-safe and can be called at any time.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	isRunning := ms.cancel != nil
	activeWindows := len(ms.windows)
	ms.mu.Unlock()

	return MemoryStoreStats{
		WindowsCreated: ms.windowsCreated.Load(),
		WindowsExpired: ms.windowsExpired.Load(),
		ActiveWindows:  activeWindows,
		IsRunning:      isRunning,
	}
}

// Healthcheck validates that the memory store is operational.
// Returns nil if healthy, or an error describing the health issue.
func (ms *MemoryStore) Healthcheck(ctx context.Context) error {
	stats := ms.Stats()

	if ms.cleanupInterval > 0 && !stats.IsRunning {
		return fmt.Errorf("cleanup is configured but not running")
	}

	return nil
}
