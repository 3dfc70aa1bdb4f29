package transfer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Config holds transfer admission settings loaded from environment variables.
type Config struct {
	SmallSlots     int   `env:"TRANSFER_SMALL_SLOTS" envDefault:"50"`
	MediumSlots    int   `env:"TRANSFER_MEDIUM_SLOTS" envDefault:"20"`
	LargeSlots     int   `env:"TRANSFER_LARGE_SLOTS" envDefault:"5"`
	LargeBandwidth int64 `env:"TRANSFER_LARGE_BANDWIDTH" envDefault:"52428800"` // bytes/sec
}

type pool struct {
	sem   *semaphore.Weighted
	max   int64
	inUse atomic.Int64
}

// Scheduler admits transfers through per-class permit pools. All methods are
// safe for concurrent use.
type Scheduler struct {
	pools    [3]*pool
	throttle *Throttle
	logger   *slog.Logger
}

// SchedulerOption configures a Scheduler during construction.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger for permit lifecycle events.
// Defaults to a discard logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler builds a Scheduler from cfg. Non-positive slot counts and
// bandwidth fall back to the Config env defaults.
func NewScheduler(cfg Config, opts ...SchedulerOption) *Scheduler {
	if cfg.SmallSlots <= 0 {
		cfg.SmallSlots = 50
	}
	if cfg.MediumSlots <= 0 {
		cfg.MediumSlots = 20
	}
	if cfg.LargeSlots <= 0 {
		cfg.LargeSlots = 5
	}
	if cfg.LargeBandwidth <= 0 {
		cfg.LargeBandwidth = 50 << 20
	}

	s := &Scheduler{
		throttle: NewThrottle(cfg.LargeBandwidth),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for class, slots := range map[SizeClass]int{
		SizeSmall:  cfg.SmallSlots,
		SizeMedium: cfg.MediumSlots,
		SizeLarge:  cfg.LargeSlots,
	} {
		s.pools[class] = &pool{
			sem: semaphore.NewWeighted(int64(slots)),
			max: int64(slots),
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AcquireDownload blocks until a permit for the class of size is available or
// ctx is done. The caller must Release the returned permit on every path.
func (s *Scheduler) AcquireDownload(ctx context.Context, size int64) (*Permit, error) {
	return s.acquire(ctx, Classify(size))
}

// AcquireUpload is AcquireDownload for inbound transfers. A non-positive size
// means the length is unknown and the transfer is classified Medium.
func (s *Scheduler) AcquireUpload(ctx context.Context, size int64) (*Permit, error) {
	class := SizeMedium
	if size > 0 {
		class = Classify(size)
	}
	return s.acquire(ctx, class)
}

// TryAcquireDownload attempts a non-blocking acquisition. It returns
// (nil, false) when the class pool is exhausted.
func (s *Scheduler) TryAcquireDownload(size int64) (*Permit, bool) {
	class := Classify(size)
	p := s.pools[class]
	if !p.sem.TryAcquire(1) {
		return nil, false
	}
	return s.granted(class, p), true
}

func (s *Scheduler) acquire(ctx context.Context, class SizeClass) (*Permit, error) {
	p := s.pools[class]
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return s.granted(class, p), nil
}

func (s *Scheduler) granted(class SizeClass, p *pool) *Permit {
	inUse := p.inUse.Add(1)
	s.logger.DebugContext(context.Background(), "transfer permit granted",
		slog.String("class", class.String()),
		slog.Int64("in_use", inUse))
	return &Permit{class: class, sched: s, pool: p}
}

// PoolStats is a snapshot of one class pool.
type PoolStats struct {
	Available int64 `json:"available"`
	Max       int64 `json:"max"`
}

// Stats reports per-class pool occupancy keyed by class name.
func (s *Scheduler) Stats() map[string]PoolStats {
	stats := make(map[string]PoolStats, len(s.pools))
	for class, p := range s.pools {
		stats[SizeClass(class).String()] = PoolStats{
			Available: p.max - p.inUse.Load(),
			Max:       p.max,
		}
	}
	return stats
}

// Utilization returns the percentage of class slots currently held, 0-100.
func (s *Scheduler) Utilization(class SizeClass) float64 {
	p := s.pools[class]
	return float64(p.inUse.Load()) / float64(p.max) * 100
}

// Permit is an admission grant for a single transfer. It is owned by the
// acquiring goroutine and must be released exactly once; Release is
// idempotent so deferring it alongside explicit error-path releases is safe.
type Permit struct {
	class SizeClass
	sched *Scheduler
	pool  *pool
	once  sync.Once
}

// Class reports the size class the permit was drawn from.
func (p *Permit) Class() SizeClass {
	return p.class
}

// Release returns the permit to its pool. Subsequent calls are no-ops.
func (p *Permit) Release() {
	p.once.Do(func() {
		p.pool.inUse.Add(-1)
		p.pool.sem.Release(1)
		p.sched.logger.DebugContext(context.Background(), "transfer permit released",
			slog.String("class", p.class.String()))
	})
}

// Reader wraps r with bandwidth metering when the permit is Large; other
// classes get r back unchanged. ctx bounds waits for bucket refill.
func (p *Permit) Reader(ctx context.Context, r io.Reader) io.Reader {
	if p.class != SizeLarge {
		return r
	}
	return p.sched.throttle.Reader(ctx, r)
}

// Writer is the outbound counterpart of Reader.
func (p *Permit) Writer(ctx context.Context, w io.Writer) io.Writer {
	if p.class != SizeLarge {
		return w
	}
	return p.sched.throttle.Writer(ctx, w)
}
