package routing

import (
	"net/http"
	"net/url"
	"strings"

	"web-gateway/internal/domain"
)

const (
	defaultHomePath = "/app/home"
	signInPath      = "/auth/sign-in"
	signUpPath      = "/auth/sign-up"
)

// Auth pages an authenticated user is bounced away from. Sign-out, profile
// and tenant-switch stay reachable while signed in.
var authPages = []string{
	"/auth/sign-in",
	"/auth/sign-up",
	"/auth/verify-email",
	"/auth/reset",
	"/auth/verify-two-factor",
	"/auth/forgot",
	"/auth/confirm",
}

var allowedWhenAuthenticated = []string{
	"/auth/sign-out",
	"/auth/profile",
	"/auth/tenant-switch",
}

// DecisionEngine evaluates identity against a route policy and produces a
// terminal access decision. It is pure: no I/O, no clock, no logging.
type DecisionEngine struct{}

// NewDecisionEngine creates a new engine.
func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

// Decide returns exactly one decision for the request. redirectParam is the
// value of the "redirect" query parameter, empty when absent.
func (e *DecisionEngine) Decide(identity domain.Identity, policy domain.RoutePolicy, method, pathname, redirectParam string) domain.AccessDecision {
	switch policy.Category {
	case domain.CategoryPublic:
		return e.decidePublic(identity, method, pathname, redirectParam)
	case domain.CategoryAdminApp:
		return e.decideAdmin(identity, policy, method, pathname)
	case domain.CategoryTenantApp:
		return e.decideTenant(identity, policy, method, pathname)
	default:
		// API endpoints authorize themselves; anything unclassified falls
		// through to default handling.
		return domain.Allow()
	}
}

func (e *DecisionEngine) decidePublic(identity domain.Identity, method, pathname, redirectParam string) domain.AccessDecision {
	if identity.IsAuthenticated() && isAuthPage(pathname) {
		target := redirectParam
		if target == "" {
			target = defaultHomePath
		}
		return domain.RedirectTo(target, http.StatusFound)
	}
	if method != http.MethodGet && method != http.MethodPost {
		return domain.MethodNotAllowed()
	}
	return domain.Allow()
}

func (e *DecisionEngine) decideAdmin(identity domain.Identity, policy domain.RoutePolicy, method, pathname string) domain.AccessDecision {
	if !identity.IsAuthenticated() {
		return redirectToSignIn(pathname)
	}
	if !policy.AllowsRoleLevel(identity.RoleLevel()) {
		return domain.Deny(domain.CodeForbidden, "You do not have permission to access this resource")
	}
	if isMutation(method) && matchesPrefix(pathname, policy.RestrictedMutationPrefixes) &&
		!policy.AllowsRoleLevel(identity.RoleLevel()) {
		return domain.Deny(domain.CodeForbidden, "You do not have permission to access this action")
	}
	return domain.Allow()
}

func (e *DecisionEngine) decideTenant(identity domain.Identity, policy domain.RoutePolicy, method, pathname string) domain.AccessDecision {
	if !identity.IsAuthenticated() {
		return redirectToSignIn(pathname)
	}
	if !policy.AllowsRoleLevel(identity.RoleLevel()) {
		return domain.Deny(domain.CodeForbidden, "You do not have permission to access this resource")
	}
	if policy.TenantRequired && !identity.HasTenant() {
		return domain.RedirectTo(signUpPath, http.StatusFound)
	}
	if isMutation(method) && matchesPrefix(pathname, policy.RestrictedMutationPrefixes) &&
		!policy.AllowsRoleLevel(identity.RoleLevel()) {
		return domain.Deny(domain.CodeForbidden, "You do not have permission to access this action")
	}
	return domain.Allow()
}

func redirectToSignIn(pathname string) domain.AccessDecision {
	return domain.RedirectTo(signInPath+"?redirect="+url.QueryEscape(pathname), http.StatusFound)
}

func isAuthPage(pathname string) bool {
	return matchesPrefix(pathname, authPages) && !matchesPrefix(pathname, allowedWhenAuthenticated)
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func matchesPrefix(pathname string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(pathname, p) {
			return true
		}
	}
	return false
}
