package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/gatekit/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Logger receives the request records (required)
	Logger *slog.Logger
	// SlowThreshold promotes requests slower than this to warn level.
	// Zero disables the promotion.
	SlowThreshold time.Duration
}

// Logging creates a request logging middleware that records method, path,
// status, response size, client IP, request ID, and latency for every request.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. A nil Logger discards all records.
func LoggingWithConfig(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			attrs := []any{
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(rec.status),
				logger.BytesOut(rec.written),
				logger.Latency(elapsed),
			}
			if ip, ok := GetClientIP(r.Context()); ok {
				attrs = append(attrs, logger.ClientIP(ip))
			}
			if id, ok := GetRequestID(r.Context()); ok {
				attrs = append(attrs, logger.RequestID(id))
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				cfg.Logger.ErrorContext(r.Context(), "request completed", attrs...)
			case cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold:
				cfg.Logger.WarnContext(r.Context(), "slow request", attrs...)
			default:
				cfg.Logger.InfoContext(r.Context(), "request completed", attrs...)
			}
		})
	}
}

// statusRecorder captures the status code and byte count written by the
// downstream handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}
