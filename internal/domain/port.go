package domain

import (
	"context"
	"time"
)

// TokenStore reads and writes the per-request credential cookies.
// Implementations are bound to a single request/response pair; writes are
// observed by subsequent reads within the same request.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	TwoFactorSessionToken() string
	// IsTokenExpired reports whether the token's expiry claim is within the
	// renewal buffer of now. Undecodable tokens count as expired.
	IsTokenExpired(token string) bool
	// SetCredentials persists a new pair with independent lifetimes.
	// A nil pair clears both cookies.
	SetCredentials(pair *Credentials, accessTTL, refreshTTL time.Duration)
	// Clear removes both credential cookies and the two-factor cookie.
	Clear()
}

// LoginResult is the Auth API response to a first-factor login.
type LoginResult struct {
	// TwoFactorSessionID is set when a second factor is required; the token
	// pair is then absent.
	TwoFactorSessionID string
	RefreshResult
}

// AuthAPI is the external authentication collaborator.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, name, email, password string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	VerifyTwoFactor(ctx context.Context, sessionID, code string) (*RefreshResult, error)
	Forgot(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// UserAPI is the external current-user collaborator.
// CurrentUser returns (nil, nil) when the request is simply unauthenticated;
// errors indicate transport or decoding failure.
type UserAPI interface {
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
	Logout(ctx context.Context, accessToken string) error
}

// TwoFactorSessions tracks login attempts awaiting their second factor.
type TwoFactorSessions interface {
	Put(session TwoFactorSession)
	Get(id string) (*TwoFactorSession, bool)
	Delete(id string)
}
