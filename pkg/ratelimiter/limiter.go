package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/breaker"
)

// DefaultKeyPrefix is the namespace all rate-limit keys live under.
const DefaultKeyPrefix = "ratelimit"

// Result reports the outcome of a single limiter check.
type Result struct {
	Limit     int           // Maximum requests allowed in the window
	Count     int64         // Post-increment request count, including this request
	Remaining int           // Requests left in the window, clamped to zero
	Window    time.Duration // Window length, used as the retry hint
}

// Allowed reports whether the request fits the quota.
func (r Result) Allowed() bool {
	return r.Count <= int64(r.Limit)
}

// RetryAfter returns how long a rejected caller should wait before retrying.
func (r Result) RetryAfter() time.Duration {
	return r.Window
}

// Limiter enforces per-identity quotas against a shared store, optionally
// gated by a circuit breaker so a store outage degrades to ErrStoreUnavailable
// instead of hanging every request on a dead dependency.
type Limiter struct {
	store   Store
	breaker *breaker.CircuitBreaker
	logger  *slog.Logger
	prefix  string
	classes map[Class]Config
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithBreaker gates store access through the given circuit breaker.
func WithBreaker(cb *breaker.CircuitBreaker) Option {
	return func(l *Limiter) { l.breaker = cb }
}

// WithLogger sets the logger for degraded-mode events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithKeyPrefix overrides the key namespace. The prefix keeps limiter keys
// separated from unrelated data in the shared store.
func WithKeyPrefix(prefix string) Option {
	return func(l *Limiter) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithClass overrides the quota for one class. Used to apply the
// environment-sourced global per-IP limit.
func WithClass(class Class, cfg Config) Option {
	return func(l *Limiter) { l.classes[class] = cfg }
}

// New creates a Limiter with the built-in class quotas.
func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	l := &Limiter{
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		prefix:  DefaultKeyPrefix,
		classes: defaultClasses(),
	}

	for _, opt := range opts {
		opt(l)
	}

	for class, cfg := range l.classes {
		if cfg.Limit <= 0 || cfg.Window <= 0 {
			return nil, fmt.Errorf("%w: class %q", ErrInvalidConfig, class)
		}
	}

	return l, nil
}

// Check counts the request against the class quota for the given identity.
//
// The counter is incremented regardless of outcome, so rejected requests
// still consume the quota. When the store is unreachable or the circuit is
// open, Check returns ErrStoreUnavailable and the caller chooses fail-open
// or fail-closed.
func (l *Limiter) Check(ctx context.Context, class Class, id Identity) (Result, error) {
	cfg, ok := l.classes[class]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	key := l.key(class, id)

	var count int64
	incr := func(ctx context.Context) error {
		n, err := l.store.Incr(ctx, key, cfg.Window)
		if err != nil {
			return err
		}
		count = n
		return nil
	}

	var err error
	if l.breaker != nil {
		err = l.breaker.Do(ctx, incr)
	} else {
		err = incr(ctx)
	}
	if err != nil {
		if errors.Is(err, breaker.ErrCircuitOpen) {
			l.logger.DebugContext(ctx, "rate limit check skipped, circuit open",
				slog.String("class", string(class)))
		} else {
			l.logger.WarnContext(ctx, "rate limit store error",
				slog.String("class", string(class)),
				slog.Any("error", err))
		}
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}

	return Result{
		Limit:     cfg.Limit,
		Count:     count,
		Remaining: max(0, cfg.Limit-int(count)),
		Window:    cfg.Window,
	}, nil
}

// ClassConfig returns the quota configured for a class.
func (l *Limiter) ClassConfig(class Class) (Config, bool) {
	cfg, ok := l.classes[class]
	return cfg, ok
}

// key renders the storage key: prefix:class:identity.
func (l *Limiter) key(class Class, id Identity) string {
	return l.prefix + ":" + string(class) + ":" + id.String()
}
