// Package routing classifies request paths into policy categories and
// turns identity + policy + method into a terminal access decision.
package routing

import (
	"strings"

	"web-gateway/internal/domain"
)

// Path prefixes that require an elevated role even for mutating requests
// already inside the matching category.
var restrictedAdminPrefixes = []string{
	"/app/admin/settings",
	"/app/admin/tenants",
	"/app/admin/users",
	"/app/admin/divisions",
	"/app/admin/agents",
	"/app/admin/channels",
	"/app/admin/analytics",
}

var restrictedTenantPrefixes = []string{
	"/app/settings",
	"/app/divisions",
	"/app/agents",
	"/app/channels",
	"/app/analytics",
}

// Classifier maps a request path to its route policy. Classification is
// pure and deterministic: longest prefix wins, so /app/admin/* resolves to
// the admin category before the broader /app/* tenant match.
type Classifier struct{}

// NewClassifier creates a new classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify resolves the policy for the given path.
func (c *Classifier) Classify(pathname string) domain.RoutePolicy {
	switch {
	case hasPrefix(pathname, "/app/admin"):
		return domain.RoutePolicy{
			Category:                   domain.CategoryAdminApp,
			RequiredRoleLevels:         []int{domain.RoleLevelSuperAdmin, domain.RoleLevelAdmin},
			RestrictedMutationPrefixes: restrictedAdminPrefixes,
		}
	case hasPrefix(pathname, "/app"):
		return domain.RoutePolicy{
			Category:                   domain.CategoryTenantApp,
			RequiredRoleLevels:         []int{domain.RoleLevelTenantOwner},
			TenantRequired:             true,
			RestrictedMutationPrefixes: restrictedTenantPrefixes,
		}
	case hasPrefix(pathname, "/auth"):
		return domain.RoutePolicy{Category: domain.CategoryPublic}
	case hasPrefix(pathname, "/api"):
		return domain.RoutePolicy{Category: domain.CategoryAPI}
	default:
		return domain.RoutePolicy{Category: domain.CategoryOther}
	}
}

// hasPrefix matches a path prefix on segment boundaries, so /application
// does not classify as /app.
func hasPrefix(pathname, prefix string) bool {
	if !strings.HasPrefix(pathname, prefix) {
		return false
	}
	if len(pathname) == len(prefix) {
		return true
	}
	return pathname[len(prefix)] == '/'
}
