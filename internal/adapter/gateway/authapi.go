package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"web-gateway/internal/domain"
)

// AuthAPIGateway talks to the backend's authentication endpoints.
// Implements domain.AuthAPI.
type AuthAPIGateway struct {
	client *backendClient
}

// NewAuthAPIGateway creates an Auth API gateway with a tuned HTTP transport.
func NewAuthAPIGateway(baseURL string, timeout time.Duration) *AuthAPIGateway {
	return &AuthAPIGateway{client: newBackendClient(baseURL, timeout)}
}

// tokenData is the token payload shared by login, refresh and 2FA responses.
type tokenData struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	ExpiresIn          int    `json:"expires_in"`
	ExpiresRefreshIn   int    `json:"expires_refresh_in"`
	TwoFactorSessionID string `json:"twofa_session_id"`
}

// Login performs first-factor authentication. When the account has a
// second factor enabled the result carries only the two-factor session id.
func (g *AuthAPIGateway) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", "")
	if err != nil {
		return nil, err
	}
	if !envelope.Success {
		if envelope.Status == http.StatusUnauthorized || envelope.Status == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, envelope.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}

	var data tokenData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	result := &domain.LoginResult{
		TwoFactorSessionID: data.TwoFactorSessionID,
		RefreshResult: domain.RefreshResult{
			AccessToken:      data.AccessToken,
			RefreshToken:     data.RefreshToken,
			ExpiresIn:        data.ExpiresIn,
			ExpiresRefreshIn: data.ExpiresRefreshIn,
		},
	}

	if result.TwoFactorSessionID == "" && (result.AccessToken == "" || result.RefreshToken == "") {
		return nil, domain.ErrMissingTokens
	}
	return result, nil
}

// Register creates a new account. Verification continues over email.
func (g *AuthAPIGateway) Register(ctx context.Context, name, email, password string) error {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "", "")
	if err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair. A response that is
// unsuccessful, or successful but missing either token, is a rejection.
func (g *AuthAPIGateway) Refresh(ctx context.Context, refreshToken string) (*domain.RefreshResult, error) {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/refresh-token", map[string]string{
		"refresh_token": refreshToken,
	}, "", "")
	if err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrRefreshRejected, envelope.Message)
	}

	var data tokenData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshRejected, err)
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshRejected, domain.ErrMissingTokens)
	}

	return &domain.RefreshResult{
		AccessToken:      data.AccessToken,
		RefreshToken:     data.RefreshToken,
		ExpiresIn:        data.ExpiresIn,
		ExpiresRefreshIn: data.ExpiresRefreshIn,
	}, nil
}

// VerifyTwoFactor completes a pending login with the second-factor code.
func (g *AuthAPIGateway) VerifyTwoFactor(ctx context.Context, sessionID, code string) (*domain.RefreshResult, error) {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/verify-two-factor", map[string]string{
		"twofa_session_id": sessionID,
		"code":             code,
	}, "", "")
	if err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, envelope.Message)
	}

	var data tokenData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		return nil, domain.ErrMissingTokens
	}

	return &domain.RefreshResult{
		AccessToken:      data.AccessToken,
		RefreshToken:     data.RefreshToken,
		ExpiresIn:        data.ExpiresIn,
		ExpiresRefreshIn: data.ExpiresRefreshIn,
	}, nil
}

// Forgot starts a password reset flow.
func (g *AuthAPIGateway) Forgot(ctx context.Context, email string) error {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/forgot", map[string]string{
		"email": email,
	}, "", "")
	if err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (g *AuthAPIGateway) ResetPassword(ctx context.Context, token, password string) error {
	envelope, err := g.client.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": password,
	}, "", "")
	if err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}
	return nil
}
