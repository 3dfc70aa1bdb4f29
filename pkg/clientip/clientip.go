package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Config holds trusted proxy configuration with environment variable support.
type Config struct {
	// TrustedProxies lists proxy IP addresses whose forwarding headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	// TrustAll honours forwarding headers from any peer. Development only.
	TrustAll bool `env:"TRUST_ALL_PROXIES" envDefault:"false"`
}

// Resolver extracts client IPs according to the configured trust policy.
// Safe for concurrent use; the trust set is immutable after construction.
type Resolver struct {
	trusted  map[string]struct{}
	trustAll bool
}

// NewResolver builds a Resolver from configuration. Invalid entries in the
// trusted proxy list are silently dropped.
func NewResolver(cfg Config) *Resolver {
	trusted := make(map[string]struct{}, len(cfg.TrustedProxies))
	for _, entry := range cfg.TrustedProxies {
		if ip := net.ParseIP(strings.TrimSpace(entry)); ip != nil {
			trusted[ip.String()] = struct{}{}
		}
	}
	return &Resolver{trusted: trusted, trustAll: cfg.TrustAll}
}

// Resolve returns the client IP for the request. Forwarding headers are
// consulted only when the direct peer is trusted; the result is always a
// normalized IP string, falling back to the raw RemoteAddr when nothing
// parses.
func (r *Resolver) Resolve(req *http.Request) string {
	peer := peerIP(req.RemoteAddr)

	if r.trustsPeer(peer) {
		if ip := fromForwardedFor(req.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := validIP(req.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	if peer != "" {
		return peer
	}
	return req.RemoteAddr
}

func (r *Resolver) trustsPeer(peer string) bool {
	if r.trustAll {
		return true
	}
	if peer == "" {
		return false
	}
	_, ok := r.trusted[peer]
	return ok
}

// peerIP extracts and normalizes the host portion of a RemoteAddr.
func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err != nil {
		// RemoteAddr may already be a bare IP in tests and some proxies.
		host = strings.TrimSpace(remoteAddr)
	}
	return validIP(host)
}

// fromForwardedFor returns the first valid IP in an X-Forwarded-For chain,
// which is the original client as reported by the nearest trusted proxy.
func fromForwardedFor(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		if ip := validIP(part); ip != "" {
			return ip
		}
	}
	return ""
}

// validIP parses and normalizes an IP string, rejecting unspecified addresses.
func validIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
