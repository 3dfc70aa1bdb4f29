// Package middleware provides net/http middleware for the admission layer:
// client IP resolution, request IDs, structured request logging, rate limit
// enforcement, and transfer admission.
//
// All middleware follow a consistent pattern:
//   - Default constructors for common use cases
//   - WithConfig constructors for advanced configuration
//   - Context helpers for retrieving stored values
//
// Middleware compose with plain function application; order matters. The
// expected chain is client IP first (everything downstream keys on it), then
// request ID and logging, then rate limiting, then transfer admission on
// upload/download routes only:
//
//	handler = middleware.ClientIP(resolver)(
//		middleware.RequestID()(
//			middleware.Logging(log)(
//				middleware.RateLimit(limiter, ratelimiter.ClassAPI)(mux))))
//
// # Rate Limiting
//
// RateLimit consults a ratelimiter.Limiter before invoking the next handler.
// Over-quota requests receive 429 with a JSON body and a Retry-After header.
// When the backing store is unreachable the middleware fails open: the
// request proceeds unlimited and the outage is logged.
//
// # Transfer Admission
//
// TransferUpload and TransferDownload hold a scheduler permit for the
// duration of the request, releasing it on every exit path including handler
// panics. The permit is available to the handler via GetPermit for bandwidth
// metering of large streams.
package middleware
