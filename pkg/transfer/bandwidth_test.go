package transfer_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/transfer"
)

func TestThrottleReaderPreservesData(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("gatekit", 1024)
	throttle := transfer.NewThrottle(10 << 20)

	var buf bytes.Buffer
	n, err := io.Copy(&buf, throttle.Reader(context.Background(), strings.NewReader(payload)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.String())
}

func TestThrottleWriterPreservesData(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xAB}, 64<<10)
	throttle := transfer.NewThrottle(10 << 20)

	var buf bytes.Buffer
	n, err := throttle.Writer(context.Background(), &buf).Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestThrottleLimitsRate(t *testing.T) {
	t.Parallel()

	// 64 KiB/s bucket with one second of burst: moving 96 KiB drains the
	// burst and then needs ~0.5s of refill.
	throttle := transfer.NewThrottle(64 << 10)
	payload := bytes.Repeat([]byte{0x01}, 96<<10)

	start := time.Now()
	_, err := io.Copy(io.Discard, throttle.Reader(context.Background(), bytes.NewReader(payload)))
	require.NoError(t, err)

	assert.Greater(t, time.Since(start), 300*time.Millisecond, "transfer beyond burst must be paced")
}

func TestThrottleSharedAcrossStreams(t *testing.T) {
	t.Parallel()

	throttle := transfer.NewThrottle(64 << 10)
	ctx := context.Background()

	// First stream drains the initial burst.
	_, err := io.Copy(io.Discard, throttle.Reader(ctx, bytes.NewReader(make([]byte, 64<<10))))
	require.NoError(t, err)

	// Second stream finds an empty bucket and must wait for refill.
	start := time.Now()
	_, err = io.Copy(io.Discard, throttle.Reader(ctx, bytes.NewReader(make([]byte, 32<<10))))
	require.NoError(t, err)
	assert.Greater(t, time.Since(start), 200*time.Millisecond)
}

func TestThrottleReaderContextCancel(t *testing.T) {
	t.Parallel()

	throttle := transfer.NewThrottle(1 << 10) // 1 KiB/s, tiny bucket
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := io.Copy(io.Discard, throttle.Reader(ctx, bytes.NewReader(make([]byte, 1<<20))))
	require.Error(t, err)
}

func TestPermitReaderMetersOnlyLarge(t *testing.T) {
	t.Parallel()

	sched := transfer.NewScheduler(transfer.Config{SmallSlots: 1, MediumSlots: 1, LargeSlots: 1})
	ctx := context.Background()

	small, err := sched.AcquireDownload(ctx, 1)
	require.NoError(t, err)
	defer small.Release()

	src := strings.NewReader("x")
	assert.Equal(t, io.Reader(src), small.Reader(ctx, src), "small transfers bypass the throttle")

	large, err := sched.AcquireDownload(ctx, 200<<20)
	require.NoError(t, err)
	defer large.Release()

	assert.NotEqual(t, io.Reader(src), large.Reader(ctx, src), "large transfers are metered")
}

func TestThrottleRate(t *testing.T) {
	t.Parallel()

	throttle := transfer.NewThrottle(50 << 20)
	assert.Equal(t, int64(50<<20), throttle.Rate())
}
