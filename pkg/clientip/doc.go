// Package clientip extracts real client IP addresses from HTTP requests
// without trusting spoofable headers.
//
// Forwarding headers (X-Forwarded-For, X-Real-IP) are only honoured when the
// direct connection peer is a configured trusted proxy, or when the explicit
// trust-all development flag is set. Otherwise the direct peer address is
// used. This prevents clients from bypassing per-IP rate limits by forging
// forwarding headers.
//
// # Usage
//
//	resolver := clientip.NewResolver(clientip.Config{
//		TrustedProxies: []string{"10.0.0.5", "10.0.0.6"},
//	})
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//		ip := resolver.Resolve(r)
//		// use for rate limiting, logging, audit
//	}
//
// # Validation
//
// All candidate addresses are parsed with net.ParseIP and normalized; invalid
// entries and unspecified addresses (0.0.0.0, ::) are skipped. X-Forwarded-For
// chains are read left to right, taking the first valid entry (the original
// client as reported by the nearest trusted proxy).
package clientip
