package ratelimiter

import "strings"

type identityKind int

const (
	identityIP identityKind = iota
	identityUser
	identityIPPath
)

// Identity names who is being rate limited: a client IP, a user, or an
// IP+path pair (used for per-endpoint limits like login throttling).
// Construct values with ByIP, ByUser, or ByIPPath.
type Identity struct {
	kind identityKind
	ip   string
	user string
	path string
}

// ByIP identifies a request by client IP address.
func ByIP(ip string) Identity {
	return Identity{kind: identityIP, ip: ip}
}

// ByUser identifies a request by authenticated user ID.
func ByUser(userID string) Identity {
	return Identity{kind: identityUser, user: userID}
}

// ByIPPath identifies a request by client IP and request path, so the same
// IP gets an independent budget per endpoint.
func ByIPPath(ip, path string) Identity {
	return Identity{kind: identityIPPath, ip: ip, path: path}
}

// String renders the identity as a storage key segment. Path separators are
// replaced so keys stay well-formed for external inspection tools.
func (id Identity) String() string {
	switch id.kind {
	case identityUser:
		return "user:" + id.user
	case identityIPPath:
		return "ip_path:" + id.ip + ":" + strings.ReplaceAll(id.path, "/", "_")
	default:
		return "ip:" + id.ip
	}
}
