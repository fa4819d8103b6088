package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/domain"
)

// expiryChecker is the token expiry inspection dependency.
type expiryChecker interface {
	IsTokenExpired(token string) bool
}

// Store is a per-request domain.TokenStore over the request's cookies.
// Reads consult values written earlier in the same request so that a
// refreshed access token is observed by later pipeline stages.
type Store struct {
	c       echo.Context
	checker expiryChecker
	secure  bool
	written map[string]string
	cleared map[string]bool
}

// NewStore binds a token store to a single request context.
// secure controls the Secure cookie attribute (on in production).
func NewStore(c echo.Context, checker expiryChecker, secure bool) *Store {
	return &Store{
		c:       c,
		checker: checker,
		secure:  secure,
		written: make(map[string]string),
		cleared: make(map[string]bool),
	}
}

// AccessToken returns the current access token, or "".
func (s *Store) AccessToken() string {
	return s.get(domain.AccessTokenCookie)
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	return s.get(domain.RefreshTokenCookie)
}

// TwoFactorSessionToken returns the pending two-factor session id, or "".
// The X-2FA-Session header takes precedence over the cookie.
func (s *Store) TwoFactorSessionToken() string {
	if h := s.c.Request().Header.Get("X-2FA-Session"); h != "" {
		return h
	}
	return s.get(domain.TwoFactorSessionCookie)
}

// IsTokenExpired reports whether the token is expired or undecodable.
func (s *Store) IsTokenExpired(token string) bool {
	return s.checker.IsTokenExpired(token)
}

// SetCredentials persists a new token pair with independent lifetimes.
// A nil pair clears both credential cookies (forced logout).
func (s *Store) SetCredentials(pair *domain.Credentials, accessTTL, refreshTTL time.Duration) {
	if pair == nil {
		s.delete(domain.AccessTokenCookie)
		s.delete(domain.RefreshTokenCookie)
		return
	}
	s.set(domain.AccessTokenCookie, pair.AccessToken, accessTTL)
	s.set(domain.RefreshTokenCookie, pair.RefreshToken, refreshTTL)
}

// SetTwoFactorSession persists the pending two-factor session id.
func (s *Store) SetTwoFactorSession(id string, ttl time.Duration) {
	s.set(domain.TwoFactorSessionCookie, id, ttl)
}

// ClearTwoFactorSession removes the two-factor cookie.
func (s *Store) ClearTwoFactorSession() {
	s.delete(domain.TwoFactorSessionCookie)
}

// Clear removes both credential cookies and the two-factor cookie.
func (s *Store) Clear() {
	s.delete(domain.AccessTokenCookie)
	s.delete(domain.RefreshTokenCookie)
	s.delete(domain.TwoFactorSessionCookie)
}

func (s *Store) get(name string) string {
	if s.cleared[name] {
		return ""
	}
	if v, ok := s.written[name]; ok {
		return v
	}
	cookie, err := s.c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Store) set(name, value string, ttl time.Duration) {
	s.c.SetCookie(&http.Cookie{
		Name:  name,
		Value: value,
		Path:  "/",
		// Not HttpOnly: the browser-side app reads the access token to
		// attach it to its own API calls.
		HttpOnly: false,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
	s.written[name] = value
	delete(s.cleared, name)
}

func (s *Store) delete(name string) {
	s.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: false,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	s.cleared[name] = true
	delete(s.written, name)
}
