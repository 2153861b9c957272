package authz

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigationMatchesRouteChecks(t *testing.T) {
	e := NewDefaultEngine()

	subjects := []Claims{
		claimsOf(t, RoleSuperAdmin),
		claimsOf(t, RoleAdmin),
		claimsOf(t, RoleEditor),
		{Role: RoleEditor, Permissions: []string{PermDashboardView, PermRainfallRead}},
		{Role: RoleAdmin, Permissions: []string{}},
		{Role: "", Permissions: AllPermissionNames()},
	}

	for _, c := range subjects {
		visible := map[string]bool{}
		for _, id := range e.NavigationVisibility(c) {
			visible[id] = true
		}
		for _, n := range DefaultNavigation() {
			assert.Equal(t, e.IsAllowedRoute(c, n.Route, http.MethodGet), visible[n.ID], "role=%q entry=%s", c.Role, n.ID)
		}
	}
}

func TestEditorNavigation(t *testing.T) {
	e := NewDefaultEngine()
	ids := e.NavigationVisibility(claimsOf(t, RoleEditor))

	assert.Contains(t, ids, "dashboard")
	assert.Contains(t, ids, "news")
	assert.Contains(t, ids, "water-levels")
	assert.NotContains(t, ids, "users")
	assert.NotContains(t, ids, "roles")
	assert.NotContains(t, ids, "permissions")
}

func TestNavigationEmptyWithoutCoarseGate(t *testing.T) {
	e := NewDefaultEngine()
	c := Claims{Role: RoleAdmin, Permissions: []string{PermNewsRead}}

	assert.Empty(t, e.NavigationVisibility(c))
	assert.Empty(t, e.VisibleNavigation(c))
}

func TestSuperAdminSeesEverything(t *testing.T) {
	e := NewDefaultEngine()
	assert.Len(t, e.VisibleNavigation(claimsOf(t, RoleSuperAdmin)), len(DefaultNavigation()))
}
