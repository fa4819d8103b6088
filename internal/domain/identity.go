package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role levels used for coarse authorization. Lower number = higher rank.
const (
	RoleLevelSuperAdmin  = 1
	RoleLevelAdmin       = 2
	RoleLevelTenantOwner = 3
	RoleLevelSupervisor  = 4
	RoleLevelAgent       = 5
)

// Role is a named rank within a tenant.
type Role struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Level int       `json:"level"`
}

// Tenant is an organizational account users belong to.
type Tenant struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

// UserTenant is the membership record linking a user to a tenant with a role.
type UserTenant struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	RoleID   uuid.UUID `json:"role_id"`
	IsActive bool      `json:"is_active"`
}

// RolePermission grants a permission to a role.
type RolePermission struct {
	ID           uuid.UUID `json:"id"`
	RoleID       uuid.UUID `json:"role_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	Resource     string    `json:"resource"`
	Action       string    `json:"action"`
}

// User is the nested current-user document returned by the User API.
type User struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	AvatarURL       string           `json:"avatar_url,omitempty"`
	EmailVerifiedAt *time.Time       `json:"email_verified_at,omitempty"`
	Tenant          *Tenant          `json:"tenant,omitempty"`
	UserTenant      *UserTenant      `json:"user_tenants,omitempty"`
	Role            *Role            `json:"role,omitempty"`
	RolePermissions []RolePermission `json:"role_permissions,omitempty"`
}

// Identity is the normalized per-request view of the current user.
// It is derived, never stored: the resolver rebuilds it on every request.
// Tenant and Membership are either both set or both nil.
type Identity struct {
	User        *User
	Tenant      *Tenant
	Membership  *UserTenant
	Role        *Role
	Permissions []RolePermission
}

// AnonymousIdentity returns the all-nil identity used for unauthenticated
// requests and for degraded resolution when the User API is unavailable.
func AnonymousIdentity() Identity {
	return Identity{}
}

// IdentityFromUser flattens the nested user document into an Identity.
// If either the tenant or the membership is missing, both are dropped so
// that "has tenant" stays a single joint condition.
func IdentityFromUser(u *User) Identity {
	if u == nil {
		return AnonymousIdentity()
	}

	identity := Identity{
		User:        u,
		Role:        u.Role,
		Permissions: u.RolePermissions,
	}

	if u.Tenant != nil && u.UserTenant != nil {
		identity.Tenant = u.Tenant
		identity.Membership = u.UserTenant
	}

	return identity
}

// IsAuthenticated reports whether a user was resolved for this request.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}

// HasTenant reports whether the user has an active tenant membership.
// Defined as joint presence of tenant and membership.
func (i Identity) HasTenant() bool {
	return i.Tenant != nil && i.Membership != nil
}

// RoleLevel returns the role level, or 0 when no role is present.
func (i Identity) RoleLevel() int {
	if i.Role == nil {
		return 0
	}
	return i.Role.Level
}
