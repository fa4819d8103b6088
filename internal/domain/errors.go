package domain

import "errors"

// Authentication errors.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTwoFactorRequired  = errors.New("two-factor verification required")
	ErrTwoFactorExpired   = errors.New("two-factor session expired")
)

// Credential refresh errors.
var (
	ErrRefreshRejected = errors.New("refresh token rejected")
	ErrMissingTokens   = errors.New("token pair missing from response")
)

// CSRF errors.
var (
	ErrCSRFSecretMissing = errors.New("CSRF secret not configured")
	ErrCSRFMismatch      = errors.New("CSRF token mismatch")
)

// External service errors.
var (
	ErrBackendUnavailable = errors.New("backend API unavailable")
	ErrUpstreamRejected   = errors.New("backend API rejected the request")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)
