package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"web-gateway/internal/domain"
)

// CredentialRefresher decides whether the request's credentials need silent
// renewal and performs the exchange when they do.
//
// Concurrent requests holding the same refresh token share one upstream
// exchange via singleflight, so a burst of page loads after expiry issues a
// single refresh call.
type CredentialRefresher struct {
	auth   domain.AuthAPI
	group  singleflight.Group
	logger *slog.Logger
}

// NewCredentialRefresher creates a new refresher.
func NewCredentialRefresher(auth domain.AuthAPI, logger *slog.Logger) *CredentialRefresher {
	return &CredentialRefresher{auth: auth, logger: logger}
}

// MaybeRefresh renews the stored credential pair when the access token is
// expired and a usable refresh token exists.
//
// Idempotent within a request: the decision re-reads the store every call,
// so a second invocation after a successful renewal is NotNeeded without
// touching the Auth API. A rejected exchange clears the stored credentials
// (forced logout) and returns RefreshFailed.
func (r *CredentialRefresher) MaybeRefresh(ctx context.Context, store domain.TokenStore) domain.RefreshOutcome {
	access := store.AccessToken()
	if access != "" && !store.IsTokenExpired(access) {
		return domain.RefreshNotNeeded
	}

	refresh := store.RefreshToken()
	if refresh == "" || store.IsTokenExpired(refresh) {
		// Nothing to exchange; downstream treats the request as anonymous.
		return domain.RefreshNotNeeded
	}

	result, err, shared := r.group.Do(refresh, func() (any, error) {
		return r.auth.Refresh(ctx, refresh)
	})
	if err != nil {
		r.logger.WarnContext(ctx, "credential refresh failed, clearing session",
			"error", err,
			"shared", shared)
		store.SetCredentials(nil, 0, 0)
		return domain.RefreshFailed
	}

	pair := result.(*domain.RefreshResult)
	store.SetCredentials(&domain.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, pair.AccessTTL(), pair.RefreshTTL())

	r.logger.DebugContext(ctx, "credentials refreshed", "shared", shared)
	return domain.RefreshDone
}
