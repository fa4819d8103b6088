package domain

import "time"

// Cookie names owned by the gateway.
const (
	AccessTokenCookie      = "access_token"
	RefreshTokenCookie     = "refresh_token"
	TwoFactorSessionCookie = "twofa_session_id"
)

// Default credential lifetimes applied when the Auth API response omits
// explicit TTLs.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Credentials is the bearer token pair persisted in cookies. Exactly one
// active pair exists per session.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// RefreshOutcome is the result of a silent credential renewal attempt.
type RefreshOutcome int

const (
	// RefreshNotNeeded means the access token is still valid, or there is
	// no usable refresh token to exchange.
	RefreshNotNeeded RefreshOutcome = iota
	// RefreshDone means a new pair was obtained and persisted.
	RefreshDone
	// RefreshFailed means the exchange was rejected and credentials were
	// cleared (forced logout).
	RefreshFailed
)

func (o RefreshOutcome) String() string {
	switch o {
	case RefreshNotNeeded:
		return "not_needed"
	case RefreshDone:
		return "refreshed"
	case RefreshFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RefreshResult carries the new token pair returned by the Auth API.
// TTLs are in seconds; zero means the response omitted them.
type RefreshResult struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	ExpiresRefreshIn int
}

// AccessTTL returns the access token lifetime, applying the default when
// the upstream response omitted it.
func (r *RefreshResult) AccessTTL() time.Duration {
	if r.ExpiresIn <= 0 {
		return DefaultAccessTokenTTL
	}
	return time.Duration(r.ExpiresIn) * time.Second
}

// RefreshTTL returns the refresh token lifetime, applying the default when
// the upstream response omitted it.
func (r *RefreshResult) RefreshTTL() time.Duration {
	if r.ExpiresRefreshIn <= 0 {
		return DefaultRefreshTokenTTL
	}
	return time.Duration(r.ExpiresRefreshIn) * time.Second
}

// TwoFactorSession correlates a login attempt awaiting its second factor.
// Transient: created on first-factor success, destroyed on completion or
// logout. It never coexists with a valid credential pair for the same flow.
type TwoFactorSession struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
