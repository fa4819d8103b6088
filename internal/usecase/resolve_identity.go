package usecase

import (
	"context"
	"log/slog"

	"web-gateway/internal/domain"
)

// IdentityResolver builds the normalized per-request identity from the
// User API. Resolution never fails: a collaborator outage degrades to the
// anonymous identity so one backend wobble does not take down page serving.
//
// The pipeline memoizes the result per request; the User API is called at
// most once per inbound request.
type IdentityResolver struct {
	users  domain.UserAPI
	logger *slog.Logger
}

// NewIdentityResolver creates a new resolver.
func NewIdentityResolver(users domain.UserAPI, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, logger: logger}
}

// Resolve fetches the current user with the given access token and
// flattens it into an Identity. Tenant and membership are jointly present
// or jointly nil; a nil user or any collaborator error yields the
// anonymous identity.
func (r *IdentityResolver) Resolve(ctx context.Context, accessToken string) domain.Identity {
	user, err := r.users.CurrentUser(ctx, accessToken)
	if err != nil {
		r.logger.ErrorContext(ctx, "current-user lookup failed, degrading to anonymous", "error", err)
		return domain.AnonymousIdentity()
	}
	return domain.IdentityFromUser(user)
}
