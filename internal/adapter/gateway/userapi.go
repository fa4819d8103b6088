package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"web-gateway/internal/domain"
)

// UserAPIGateway talks to the backend's user endpoints.
// Implements domain.UserAPI.
type UserAPIGateway struct {
	client *backendClient
}

// NewUserAPIGateway creates a User API gateway with a tuned HTTP transport.
func NewUserAPIGateway(baseURL string, timeout time.Duration) *UserAPIGateway {
	return &UserAPIGateway{client: newBackendClient(baseURL, timeout)}
}

// CurrentUser fetches the nested current-user document. An unsuccessful
// envelope (expired or missing token) is (nil, nil): the caller treats the
// request as unauthenticated. Errors mean the collaborator itself failed.
func (g *UserAPIGateway) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	envelope, err := g.client.do(ctx, http.MethodGet, "/user/me", nil, accessToken, "")
	if err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal(envelope.Data, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	return &user, nil
}

// Logout invalidates the session server-side. CSRF-protected mutation.
func (g *UserAPIGateway) Logout(ctx context.Context, accessToken string) error {
	envelope, err := g.client.mutate(ctx, http.MethodPost, "/user/logout", nil, accessToken)
	if err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}
	return nil
}
