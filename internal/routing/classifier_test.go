package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"web-gateway/internal/domain"
)

func TestClassify_Categories(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		pathname string
		category domain.RouteCategory
	}{
		{"/auth/sign-in", domain.CategoryPublic},
		{"/auth/verify-two-factor", domain.CategoryPublic},
		{"/app/admin", domain.CategoryAdminApp},
		{"/app/admin/users", domain.CategoryAdminApp},
		{"/app", domain.CategoryTenantApp},
		{"/app/chats", domain.CategoryTenantApp},
		{"/app/settings/profile", domain.CategoryTenantApp},
		{"/api/users", domain.CategoryAPI},
		{"/", domain.CategoryOther},
		{"/about", domain.CategoryOther},
		// Prefix match is segment-aware.
		{"/application", domain.CategoryOther},
		{"/authentic", domain.CategoryOther},
		{"/apix", domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.pathname, func(t *testing.T) {
			assert.Equal(t, tt.category, c.Classify(tt.pathname).Category)
		})
	}
}

func TestClassify_LongestPrefixWins(t *testing.T) {
	c := NewClassifier()

	policy := c.Classify("/app/admin/tenants/42")

	assert.Equal(t, domain.CategoryAdminApp, policy.Category)
	assert.Equal(t, []int{domain.RoleLevelSuperAdmin, domain.RoleLevelAdmin}, policy.RequiredRoleLevels)
	assert.False(t, policy.TenantRequired)
}

func TestClassify_TenantPolicy(t *testing.T) {
	c := NewClassifier()

	policy := c.Classify("/app/divisions/5")

	assert.Equal(t, domain.CategoryTenantApp, policy.Category)
	assert.Equal(t, []int{domain.RoleLevelTenantOwner}, policy.RequiredRoleLevels)
	assert.True(t, policy.TenantRequired)
	assert.Contains(t, policy.RestrictedMutationPrefixes, "/app/divisions")
}

func TestClassify_PublicAndAPIHaveNoRoleRequirements(t *testing.T) {
	c := NewClassifier()

	for _, pathname := range []string{"/auth/sign-up", "/api/messages"} {
		policy := c.Classify(pathname)
		assert.Empty(t, policy.RequiredRoleLevels, pathname)
		assert.False(t, policy.TenantRequired, pathname)
	}
}
