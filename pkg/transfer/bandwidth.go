package transfer

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxChunk bounds how many bytes a single metered Read or Write moves before
// settling with the token bucket. It must stay at or below the bucket burst
// so WaitN never fails on chunk size alone.
const maxChunk = 256 << 10 // 256 KiB

// Throttle is a shared bandwidth token bucket. Concurrent streams draw from
// the same bucket, so aggregate throughput stays at the configured rate
// regardless of how many transfers are active.
type Throttle struct {
	limiter *rate.Limiter
	chunk   int
}

// NewThrottle builds a bucket refilled at bytesPerSec with roughly one
// second of burst capacity.
func NewThrottle(bytesPerSec int64) *Throttle {
	burst := int(bytesPerSec)
	chunk := maxChunk
	if chunk > burst {
		chunk = burst
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
		chunk:   chunk,
	}
}

// Rate reports the configured fill rate in bytes per second.
func (t *Throttle) Rate() int64 {
	return int64(t.limiter.Limit())
}

// Reader meters bytes read from r against the bucket. Reads settle after the
// fact with the actual byte count, so short reads are charged exactly.
func (t *Throttle) Reader(ctx context.Context, r io.Reader) io.Reader {
	return &meteredReader{throttle: t, ctx: ctx, r: r}
}

// Writer meters bytes written to w against the bucket.
func (t *Throttle) Writer(ctx context.Context, w io.Writer) io.Writer {
	return &meteredWriter{throttle: t, ctx: ctx, w: w}
}

type meteredReader struct {
	throttle *Throttle
	ctx      context.Context
	r        io.Reader
}

func (m *meteredReader) Read(p []byte) (int, error) {
	if len(p) > m.throttle.chunk {
		p = p[:m.throttle.chunk]
	}
	n, err := m.r.Read(p)
	if n > 0 {
		if werr := m.throttle.limiter.WaitN(m.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

type meteredWriter struct {
	throttle *Throttle
	ctx      context.Context
	w        io.Writer
}

func (m *meteredWriter) Write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > m.throttle.chunk {
			chunk = chunk[:m.throttle.chunk]
		}
		if err := m.throttle.limiter.WaitN(m.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := m.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
