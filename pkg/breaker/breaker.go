package breaker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the lowercase state name for logging and metrics.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
	DefaultSuccessThreshold = 2
)

// Config holds circuit breaker thresholds with environment variable support.
// Zero values are replaced with the package defaults.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
	// RecoveryTimeout is how long the circuit stays open before probing recovery.
	RecoveryTimeout time.Duration `env:"BREAKER_RECOVERY_TIMEOUT" envDefault:"30s"`
	// SuccessThreshold is the number of consecutive half-open successes that close the circuit.
	SuccessThreshold int `env:"BREAKER_SUCCESS_THRESHOLD" envDefault:"2"`
}

// CircuitBreaker is a process-local state machine guarding a single dependency.
// Safe for concurrent use; no method blocks or suspends.
type CircuitBreaker struct {
	name   string
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
}

// Metrics is an observability snapshot of the breaker state.
type Metrics struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    int       `json:"failure_count"`
	LastFailure time.Time `json:"last_failure_time"`
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithLogger sets the logger for state transition events.
func WithLogger(logger *slog.Logger) Option {
	return func(cb *CircuitBreaker) {
		if logger != nil {
			cb.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) {
		if now != nil {
			cb.now = now
		}
	}
}

// New creates a circuit breaker for the named dependency.
func New(name string, cfg Config, opts ...Option) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = DefaultRecoveryTimeout
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = DefaultSuccessThreshold
	}

	cb := &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		state:  StateClosed,
	}

	for _, opt := range opts {
		opt(cb)
	}

	return cb
}

// Allow reports whether a call to the dependency should be attempted.
// Returns true in Closed and HalfOpen (half-open calls act as recovery
// probes), false in Open. Performs the lazy Open to HalfOpen transition once
// the recovery timeout has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeProbe()
	return cb.state != StateOpen
}

// Success records a successful call.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = StateClosed
			cb.failures = 0
			cb.successes = 0
			cb.logger.Info("circuit breaker closed",
				slog.String("name", cb.name))
		}
	}
}

// Failure records a failed call.
func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = StateOpen
			cb.logger.Warn("circuit breaker opened",
				slog.String("name", cb.name),
				slog.Int("failures", cb.failures))
		}
	case StateHalfOpen:
		// A single failed probe reopens the circuit.
		cb.successes = 0
		cb.state = StateOpen
		cb.logger.Warn("circuit breaker reopened",
			slog.String("name", cb.name))
	}
}

// Do executes the operation if the circuit allows it, recording the outcome.
// When the circuit is open, it returns ErrCircuitOpen without invoking op.
// The breaker holds no lock while op runs.
func (cb *CircuitBreaker) Do(ctx context.Context, op func(context.Context) error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}

	if err := op(ctx); err != nil {
		cb.Failure()
		return err
	}

	cb.Success()
	return nil
}

// State returns the current state, applying the lazy recovery transition.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeProbe()
	return cb.state
}

// Metrics returns an observability snapshot of the breaker.
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeProbe()
	return Metrics{
		Name:        cb.name,
		State:       cb.state.String(),
		Failures:    cb.failures,
		LastFailure: cb.lastFailure,
	}
}

// maybeProbe transitions Open to HalfOpen once the recovery timeout has
// elapsed since the last failure. Caller must hold cb.mu.
func (cb *CircuitBreaker) maybeProbe() {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.cfg.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.logger.Info("circuit breaker half-open, probing recovery",
			slog.String("name", cb.name))
	}
}
