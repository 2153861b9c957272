package authz

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsOf(t *testing.T, role string) Claims {
	t.Helper()
	for _, r := range DefaultRoles() {
		if r.Name == role {
			return Claims{UserID: 1, Email: "u@example.com", Role: r.Name, Permissions: r.Permissions}
		}
	}
	require.Failf(t, "unknown seed role", "role %q", role)
	return Claims{}
}

func TestCatalogHas38UniquePermissions(t *testing.T) {
	names := AllPermissionNames()
	assert.Len(t, names, 38)

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate permission %s", n)
		seen[n] = true
		assert.Regexp(t, `^[a-z_]+:[a-z_]+$`, n)
	}
	assert.True(t, IsCatalogPermission("contact_submissions:edit"))
	assert.False(t, IsCatalogPermission("Users:Read"))
}

func TestIsAllowedEmptyRequirement(t *testing.T) {
	assert.True(t, IsAllowed(Claims{}, nil))
	assert.True(t, IsAllowed(Claims{Permissions: []string{}}, []string{}))
}

func TestIsAllowedSubset(t *testing.T) {
	c := Claims{Role: RoleEditor, Permissions: []string{PermNewsRead, PermNewsCreate, PermDashboardView}}

	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"single held", []string{PermNewsRead}, true},
		{"all held", []string{PermNewsRead, PermNewsCreate}, true},
		{"one missing", []string{PermNewsRead, PermNewsDelete}, false},
		{"none held", []string{PermUsersDelete}, false},
		{"case sensitive", []string{"NEWS:READ"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowed(c, tt.required))
		})
	}
}

func TestIsAllowedFailsClosedWithoutPermissions(t *testing.T) {
	assert.False(t, IsAllowed(Claims{Role: RoleSuperAdmin}, []string{PermDashboardView}))
	assert.False(t, IsAllowed(Claims{Role: RoleSuperAdmin, Permissions: []string{}}, []string{PermDashboardView}))
}

func TestSuperAdminHoldsCatalog(t *testing.T) {
	c := claimsOf(t, RoleSuperAdmin)
	assert.ElementsMatch(t, AllPermissionNames(), c.Permissions)
	assert.True(t, IsAllowed(c, []string{PermNewsDelete, PermUsersRoles}))
}

func TestAdminGainsPermissionOnReissue(t *testing.T) {
	c := claimsOf(t, RoleAdmin)
	assert.False(t, IsAllowed(c, []string{PermUsersCreate}))

	reissued := c.WithPermissions(c.Role, append(append([]string{}, c.Permissions...), PermUsersCreate))
	assert.True(t, IsAllowed(reissued, []string{PermUsersCreate}))
	assert.False(t, IsAllowed(c, []string{PermUsersCreate}), "original claims must not change")
}

func TestRoleGateIndependentOfPermissions(t *testing.T) {
	c := Claims{Role: RoleAdmin, Permissions: []string{}}

	assert.True(t, Evaluate(AdministrativeRoleGate(), c))
	assert.False(t, Evaluate(Permission(PermUsersDelete), c))
	assert.True(t, IsAdministrativeRole(RoleSuperAdmin))
	assert.False(t, IsAdministrativeRole(RoleEditor))
	assert.False(t, IsAdministrativeRole("admin"))
}

func TestEvaluateUnknownRoleAndNilRule(t *testing.T) {
	assert.False(t, Evaluate(Roles(""), Claims{Role: ""}))
	assert.False(t, Evaluate(nil, claimsOf(t, RoleSuperAdmin)))
	assert.True(t, Evaluate(Permission(), Claims{}))
}

func TestWithPermissionsCopiesInput(t *testing.T) {
	perms := []string{PermNewsRead}
	c := Claims{Email: "a@b.c"}.WithPermissions(RoleEditor, perms)
	perms[0] = PermUsersDelete

	assert.Equal(t, []string{PermNewsRead}, c.Permissions)
	assert.Equal(t, RoleEditor, c.Role)
	assert.True(t, c.HasPermissions())
	assert.False(t, Claims{}.HasPermissions())
}

func TestRecordDecisionCountsDenials(t *testing.T) {
	before := testutil.ToFloat64(AuthzDeniedTotal.WithLabelValues(GatePermission, ReasonRule))
	RecordDecision(GatePermission, false, ReasonRule)
	after := testutil.ToFloat64(AuthzDeniedTotal.WithLabelValues(GatePermission, ReasonRule))
	assert.Equal(t, before+1, after)
}
