package domain

// RouteCategory buckets a request path for authorization policy.
type RouteCategory int

const (
	// CategoryOther covers paths outside the app, auth and API spaces.
	CategoryOther RouteCategory = iota
	// CategoryPublic covers the /auth pages (sign-in, sign-up, ...).
	CategoryPublic
	// CategoryTenantApp covers the tenant-scoped application shell under /app.
	CategoryTenantApp
	// CategoryAdminApp covers the platform admin shell under /app/admin.
	CategoryAdminApp
	// CategoryAPI covers /api endpoints, which authorize themselves.
	CategoryAPI
)

func (c RouteCategory) String() string {
	switch c {
	case CategoryPublic:
		return "public"
	case CategoryTenantApp:
		return "tenant-app"
	case CategoryAdminApp:
		return "admin-app"
	case CategoryAPI:
		return "api"
	default:
		return "other"
	}
}

// RoutePolicy is the declared access policy for a classified path.
// Static: derived purely from the path, never mutated.
type RoutePolicy struct {
	Category RouteCategory
	// RequiredRoleLevels lists the role levels allowed into the category.
	// Empty means no role requirement.
	RequiredRoleLevels []int
	// TenantRequired marks categories that need an active tenant membership.
	TenantRequired bool
	// RestrictedMutationPrefixes lists path prefixes whose mutating methods
	// re-check the role requirement even after category entry.
	RestrictedMutationPrefixes []string
}

// AllowsRoleLevel reports whether level is in the policy's allowed set.
func (p RoutePolicy) AllowsRoleLevel(level int) bool {
	for _, l := range p.RequiredRoleLevels {
		if l == level {
			return true
		}
	}
	return false
}
