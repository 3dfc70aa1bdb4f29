package ratelimiter

import "errors"

// Package-level error definitions for rate limiter operations.
var (
	ErrNilStore         = errors.New("store is required")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownClass     = errors.New("unknown limiter class")
	ErrStoreUnavailable = errors.New("store unavailable")
)
