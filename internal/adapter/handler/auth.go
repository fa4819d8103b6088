package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/domain"
	"web-gateway/internal/pipeline"
)

// sessionStore is the per-request cookie state the auth flows write to.
// It extends the pipeline's token store with the two-factor cookie.
type sessionStore interface {
	domain.TokenStore
	SetTwoFactorSession(id string, ttl time.Duration)
	ClearTwoFactorSession()
}

// AuthHandler drives the browser-facing authentication flows: sign-in,
// sign-up, two-factor verification, sign-out and password recovery. All
// endpoints answer form POSTs with a redirect.
type AuthHandler struct {
	auth         domain.AuthAPI
	users        domain.UserAPI
	sessions     domain.TwoFactorSessions
	twoFactorTTL time.Duration
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler. twoFactorTTL bounds how long a
// pending second factor stays verifiable.
func NewAuthHandler(
	auth domain.AuthAPI,
	users domain.UserAPI,
	sessions domain.TwoFactorSessions,
	twoFactorTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		users:        users,
		sessions:     sessions,
		twoFactorTTL: twoFactorTTL,
		logger:       logger,
	}
}

func (h *AuthHandler) store(c echo.Context) (sessionStore, error) {
	s, ok := pipeline.TokenStoreFromContext(c).(sessionStore)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return s, nil
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.FormValue("email")
	password := c.FormValue("password")

	store, err := h.store(c)
	if err != nil {
		return err
	}

	result, err := h.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.Redirect(http.StatusSeeOther, "/auth/sign-in?error=invalid-credentials")
		}
		h.logger.ErrorContext(ctx, "login failed", "error", err)
		return mapDomainError(err)
	}

	if result.TwoFactorSessionID != "" {
		h.sessions.Put(domain.TwoFactorSession{
			ID:        result.TwoFactorSessionID,
			Email:     email,
			CreatedAt: time.Now(),
		})
		store.SetTwoFactorSession(result.TwoFactorSessionID, h.twoFactorTTL)
		return c.Redirect(http.StatusSeeOther, "/auth/verify-two-factor")
	}

	store.SetCredentials(&domain.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, result.AccessTTL(), result.RefreshTTL())

	h.logger.InfoContext(ctx, "user signed in")
	return c.Redirect(http.StatusSeeOther, h.postLoginTarget(c))
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandler) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.auth.Register(ctx, c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.Redirect(http.StatusSeeOther, "/auth/sign-up?error=invalid-input")
		}
		h.logger.ErrorContext(ctx, "registration failed", "error", err)
		return mapDomainError(err)
	}

	return c.Redirect(http.StatusSeeOther, "/auth/sign-in?registered=1")
}

// VerifyTwoFactor handles POST /auth/verify-two-factor.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.store(c)
	if err != nil {
		return err
	}

	sessionID := store.TwoFactorSessionToken()
	if sessionID == "" {
		return c.Redirect(http.StatusSeeOther, "/auth/sign-in?error=twofa-expired")
	}
	if _, ok := h.sessions.Get(sessionID); !ok {
		store.ClearTwoFactorSession()
		return c.Redirect(http.StatusSeeOther, "/auth/sign-in?error=twofa-expired")
	}

	result, err := h.auth.VerifyTwoFactor(ctx, sessionID, c.FormValue("code"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.Redirect(http.StatusSeeOther, "/auth/verify-two-factor?error=invalid-code")
		}
		h.logger.ErrorContext(ctx, "two-factor verification failed", "error", err)
		return mapDomainError(err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		h.logger.ErrorContext(ctx, "two-factor response missing tokens")
		return mapDomainError(domain.ErrMissingTokens)
	}

	h.sessions.Delete(sessionID)
	store.ClearTwoFactorSession()
	store.SetCredentials(&domain.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, result.AccessTTL(), result.RefreshTTL())

	h.logger.InfoContext(ctx, "two-factor verification completed")
	return c.Redirect(http.StatusSeeOther, h.postLoginTarget(c))
}

// SignOut handles POST /auth/sign-out. The upstream logout is best-effort:
// local cookies are cleared even when the backend is unreachable.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.store(c)
	if err != nil {
		return err
	}

	if access := store.AccessToken(); access != "" {
		if err := h.users.Logout(ctx, access); err != nil {
			h.logger.WarnContext(ctx, "upstream logout failed", "error", err)
		}
	}
	if sessionID := store.TwoFactorSessionToken(); sessionID != "" {
		h.sessions.Delete(sessionID)
	}
	store.Clear()

	h.logger.InfoContext(ctx, "user signed out")
	return c.Redirect(http.StatusSeeOther, "/auth/sign-in")
}

// Forgot handles POST /auth/forgot. The response is identical whether or
// not the address exists, so the endpoint does not leak account presence.
func (h *AuthHandler) Forgot(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.auth.Forgot(ctx, c.FormValue("email")); err != nil {
		if !errors.Is(err, domain.ErrUpstreamRejected) {
			h.logger.ErrorContext(ctx, "password reset request failed", "error", err)
			return mapDomainError(err)
		}
	}
	return c.Redirect(http.StatusSeeOther, "/auth/forgot?sent=1")
}

// Reset handles POST /auth/reset.
func (h *AuthHandler) Reset(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.auth.ResetPassword(ctx, c.FormValue("token"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamRejected) {
			return c.Redirect(http.StatusSeeOther, "/auth/reset?error=invalid-token")
		}
		h.logger.ErrorContext(ctx, "password reset failed", "error", err)
		return mapDomainError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/auth/sign-in?reset=1")
}

func (h *AuthHandler) postLoginTarget(c echo.Context) string {
	if target := c.QueryParam("redirect"); target != "" {
		return target
	}
	return "/app/home"
}
