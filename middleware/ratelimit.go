package middleware

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/gatekit/core/logger"
	"github.com/dmitrymomot/gatekit/pkg/ratelimiter"
)

// rateLimitExceededResponse is the JSON body returned with 429 responses.
type rateLimitExceededResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds int64  `json:"retry_after_seconds"`
	Remaining         int64  `json:"remaining"`
}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Limiter enforces the quota (required)
	Limiter *ratelimiter.Limiter
	// Class selects which limit class applies (default: ClassAPI)
	Class ratelimiter.Class
	// Identify derives the counted identity from the request. Defaults to
	// the client IP previously resolved by the ClientIP middleware, falling
	// back to the raw remote address.
	Identify func(r *http.Request) ratelimiter.Identity
	// Logger records store outages and rejections (default: discard)
	Logger *slog.Logger
}

// RateLimit creates a rate limiting middleware for the given class. Requests
// are counted by client IP; over-quota requests receive 429 with a
// Retry-After header.
func RateLimit(limiter *ratelimiter.Limiter, class ratelimiter.Class) func(http.Handler) http.Handler {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter, Class: class})
}

// RateLimitWithConfig creates a rate limiting middleware with custom
// configuration. When the limiter reports its store unavailable the request
// is admitted unlimited rather than refused.
func RateLimitWithConfig(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Class == "" {
		cfg.Class = ratelimiter.ClassAPI
	}
	if cfg.Identify == nil {
		cfg.Identify = func(r *http.Request) ratelimiter.Identity {
			if ip, ok := GetClientIP(r.Context()); ok {
				return ratelimiter.ByIP(ip)
			}
			return ratelimiter.ByIP(r.RemoteAddr)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Limiter == nil || (cfg.Skip != nil && cfg.Skip(r)) {
				next.ServeHTTP(w, r)
				return
			}

			id := cfg.Identify(r)
			result, err := cfg.Limiter.Check(r.Context(), cfg.Class, id)
			if err != nil {
				if errors.Is(err, ratelimiter.ErrStoreUnavailable) {
					// Fail open: an unavailable limit store must not take
					// the service down with it.
					cfg.Logger.WarnContext(r.Context(), "rate limit store unavailable, admitting request",
						logger.Error(err),
						slog.String("class", string(cfg.Class)))
					next.ServeHTTP(w, r)
					return
				}
				cfg.Logger.ErrorContext(r.Context(), "rate limit check failed",
					logger.Error(err),
					slog.String("class", string(cfg.Class)))
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal_error",
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", formatInt(int64(result.Remaining)))
			if result.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int64(math.Ceil(result.RetryAfter().Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", formatInt(retryAfter))
			cfg.Logger.InfoContext(r.Context(), "rate limit exceeded",
				slog.String("class", string(cfg.Class)),
				slog.String("identity", id.String()),
				slog.Int64("count", result.Count))
			writeJSON(w, http.StatusTooManyRequests, rateLimitExceededResponse{
				Error:             "rate_limit_exceeded",
				Message:           "request rate limit exceeded, retry later",
				RetryAfterSeconds: retryAfter,
				Remaining:         int64(result.Remaining),
			})
		})
	}
}

func formatInt(n int64) string {
	if n < 0 {
		n = 0
	}
	return strconv.FormatInt(n, 10)
}
