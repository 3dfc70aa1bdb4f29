package middleware

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/gatekit/pkg/clientip"
)

// clientIPContextKey is used as a key for storing client IP in request context.
type clientIPContextKey struct{}

// ClientIPConfig configures the client IP middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Resolver applies the trusted-proxy policy (required)
	Resolver *clientip.Resolver
	// StoreInHeader writes the resolved IP back into the request headers
	// under HeaderName for downstream services
	StoreInHeader bool
	// HeaderName specifies the header for StoreInHeader (default: "X-Client-IP")
	HeaderName string
}

// ClientIP creates a client IP middleware that resolves the real client
// address through the resolver's trusted-proxy policy and stores it in the
// request context.
func ClientIP(resolver *clientip.Resolver) func(http.Handler) http.Handler {
	return ClientIPWithConfig(ClientIPConfig{Resolver: resolver})
}

// ClientIPWithConfig creates a client IP middleware with custom configuration.
// A nil Resolver falls back to an empty trust list, meaning forwarded headers
// are never honored.
func ClientIPWithConfig(cfg ClientIPConfig) func(http.Handler) http.Handler {
	if cfg.Resolver == nil {
		cfg.Resolver = clientip.NewResolver(clientip.Config{})
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := cfg.Resolver.Resolve(r)
			if cfg.StoreInHeader {
				r.Header.Set(cfg.HeaderName, ip)
			}

			ctx := context.WithValue(r.Context(), clientIPContextKey{}, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIP retrieves the resolved client IP from the request context.
// Returns the IP and a boolean indicating whether it was found.
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok
}
