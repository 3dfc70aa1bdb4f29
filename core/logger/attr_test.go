package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil, nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestTimingAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Duration("duration", time.Second).String(), logger.Duration(time.Second).String())
	assert.Equal(t, slog.Duration("latency", time.Second).String(), logger.Latency(time.Second).String())

	elapsed := logger.Elapsed(time.Now().Add(-time.Millisecond))
	assert.Equal(t, "elapsed", elapsed.Key)
	assert.GreaterOrEqual(t, elapsed.Value.Duration(), time.Millisecond)
}

func TestHTTPAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "method", logger.Method("GET").Key)
	assert.Equal(t, "path", logger.Path("/files").Key)
	assert.Equal(t, "status_code", logger.StatusCode(429).Key)
	assert.Equal(t, "client_ip", logger.ClientIP("10.0.0.1").Key)
	assert.Equal(t, "bytes_out", logger.BytesOut(1024).Key)

	assert.Equal(t, "req-1", logger.RequestID("req-1").Value.String())
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
}

func TestGenericAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "component", logger.Component("breaker").Key)
	assert.Equal(t, "event", logger.Event("open").Key)
	assert.Equal(t, int64(3), logger.Count("failures", 3).Value.Int64())

	assert.True(t, logger.Key("anything", nil).Equal(slog.Attr{}))
	assert.Equal(t, "value", logger.Key("k", "value").Value.Any())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewFromConfig(
		logger.Config{Level: "debug", Format: "json"},
		logger.WithOutput(&buf),
	)

	log.Debug("visible")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}
