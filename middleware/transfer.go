package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/gatekit/core/logger"
	"github.com/dmitrymomot/gatekit/pkg/transfer"
)

// permitContextKey is used as a key for storing the transfer permit in
// request context.
type permitContextKey struct{}

// TransferConfig configures the transfer admission middleware.
type TransferConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Scheduler grants the permits (required)
	Scheduler *transfer.Scheduler
	// Size derives the transfer byte size from the request. Defaults to the
	// Content-Length header for uploads and the X-Transfer-Size header for
	// downloads; non-positive means unknown.
	Size func(r *http.Request) int64
	// Logger records admission waits and rejections (default: discard)
	Logger *slog.Logger
}

// TransferUpload creates an admission middleware for upload routes. It holds
// a permit for the request's size class while the handler runs; unknown sizes
// are admitted through the medium pool.
func TransferUpload(sched *transfer.Scheduler) func(http.Handler) http.Handler {
	return transferWithConfig(TransferConfig{Scheduler: sched}, acquireUpload)
}

// TransferDownload is TransferUpload for download routes. The declared size
// comes from the X-Transfer-Size header set by the routing layer.
func TransferDownload(sched *transfer.Scheduler) func(http.Handler) http.Handler {
	return transferWithConfig(TransferConfig{Scheduler: sched}, acquireDownload)
}

// TransferUploadWithConfig creates an upload admission middleware with custom
// configuration.
func TransferUploadWithConfig(cfg TransferConfig) func(http.Handler) http.Handler {
	return transferWithConfig(cfg, acquireUpload)
}

// TransferDownloadWithConfig creates a download admission middleware with
// custom configuration.
func TransferDownloadWithConfig(cfg TransferConfig) func(http.Handler) http.Handler {
	return transferWithConfig(cfg, acquireDownload)
}

func acquireUpload(ctx context.Context, s *transfer.Scheduler, size int64) (*transfer.Permit, error) {
	return s.AcquireUpload(ctx, size)
}

func acquireDownload(ctx context.Context, s *transfer.Scheduler, size int64) (*transfer.Permit, error) {
	return s.AcquireDownload(ctx, size)
}

func transferWithConfig(cfg TransferConfig, acquire func(context.Context, *transfer.Scheduler, int64) (*transfer.Permit, error)) func(http.Handler) http.Handler {
	if cfg.Size == nil {
		cfg.Size = func(r *http.Request) int64 {
			if r.ContentLength > 0 {
				return r.ContentLength
			}
			if v := r.Header.Get("X-Transfer-Size"); v != "" {
				if size, err := strconv.ParseInt(v, 10, 64); err == nil {
					return size
				}
			}
			return 0
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Scheduler == nil || (cfg.Skip != nil && cfg.Skip(r)) {
				next.ServeHTTP(w, r)
				return
			}

			permit, err := acquire(r.Context(), cfg.Scheduler, cfg.Size(r))
			if err != nil {
				// The client gave up or the server is draining while the
				// request waited for a slot.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					cfg.Logger.InfoContext(r.Context(), "transfer admission abandoned", logger.Error(err))
					writeJSON(w, http.StatusServiceUnavailable, map[string]string{
						"error": "transfer_admission_timeout",
					})
					return
				}
				cfg.Logger.ErrorContext(r.Context(), "transfer admission failed", logger.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal_error",
				})
				return
			}
			// Release on every exit path, handler panics included.
			defer permit.Release()

			ctx := context.WithValue(r.Context(), permitContextKey{}, permit)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPermit retrieves the transfer permit from the request context. Handlers
// use it to wrap their streams with bandwidth metering.
func GetPermit(ctx context.Context) (*transfer.Permit, bool) {
	permit, ok := ctx.Value(permitContextKey{}).(*transfer.Permit)
	return permit, ok
}
