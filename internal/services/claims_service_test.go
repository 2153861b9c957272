package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"irigasi/internal/authz"
	apperrors "irigasi/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAlwaysCarriesPermissions(t *testing.T) {
	store := newStubStore()
	u := store.addUser(9, "x@example.com", "", nil)
	issuer := NewClaimsIssuer(store, time.Second)

	c := issuer.Issue(NewUserRecord(u))
	assert.True(t, c.HasPermissions())
	assert.Empty(t, c.Permissions)
	assert.Equal(t, uint(9), c.UserID)
	assert.Equal(t, "x@example.com", c.Email)
}

func TestRefreshWithPermissionsIsIdempotentAndReadsNothing(t *testing.T) {
	store := newStubStore()
	issuer := NewClaimsIssuer(store, time.Second)
	c := authz.Claims{UserID: 1, Email: "a@example.com", Role: authz.RoleEditor, Permissions: []string{authz.PermNewsRead}}

	first := issuer.Refresh(context.Background(), c)
	second := issuer.Refresh(context.Background(), first)

	assert.Equal(t, c, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, store.callCount())
}

func TestRefreshLegacyClaimsRederivesPermissions(t *testing.T) {
	store := newStubStore()
	store.addUser(5, "admin@example.com", "", roleWith(2, authz.RoleAdmin, authz.PermDashboardView, authz.PermNewsRead))
	issuer := NewClaimsIssuer(store, time.Second)
	engine := authz.NewDefaultEngine()

	legacy := authz.Claims{UserID: 5, Email: "admin@example.com", Role: authz.RoleAdmin}
	assert.False(t, engine.IsAllowedRoute(legacy, "/api/admin/news", http.MethodGet))

	refreshed := issuer.Refresh(context.Background(), legacy)
	assert.ElementsMatch(t, []string{authz.PermDashboardView, authz.PermNewsRead}, refreshed.Permissions)
	assert.True(t, engine.IsAllowedRoute(refreshed, "/api/admin/news", http.MethodGet))
	assert.Nil(t, legacy.Permissions, "input claims must not change")
	assert.Equal(t, 1, store.callCount())
}

func TestRefreshFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *stubStore)
	}{
		{"user deleted", func(s *stubStore) {}},
		{"store error", func(s *stubStore) { s.err = errors.New("db down") }},
		{"role removed", func(s *stubStore) { s.addUser(5, "gone@example.com", "", nil) }},
		{"email reassigned", func(s *stubStore) {
			s.addUser(77, "gone@example.com", "", roleWith(1, authz.RoleSuperAdmin, authz.AllPermissionNames()...))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			tt.setup(store)
			issuer := NewClaimsIssuer(store, time.Second)

			c := issuer.Refresh(context.Background(), authz.Claims{UserID: 5, Email: "gone@example.com", Role: authz.RoleSuperAdmin})
			require.NotNil(t, c.Permissions)
			assert.Empty(t, c.Permissions)
			assert.False(t, authz.IsAllowed(c, []string{authz.PermDashboardView}))
			assert.False(t, authz.Evaluate(authz.AdministrativeRoleGate(), c))
		})
	}
}

func TestRefreshBoundedByTimeout(t *testing.T) {
	store := newStubStore()
	store.block = true
	issuer := NewClaimsIssuer(store, 20*time.Millisecond)

	start := time.Now()
	c := issuer.Refresh(context.Background(), authz.Claims{UserID: 1, Email: "slow@example.com", Role: authz.RoleAdmin})
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, c.Permissions)
}

func TestRefreshBreakerOpensAfterRepeatedFailures(t *testing.T) {
	store := newStubStore()
	store.err = errors.New("db down")
	issuer := NewClaimsIssuer(store, time.Second)
	legacy := authz.Claims{UserID: 1, Email: "a@example.com", Role: authz.RoleAdmin}

	for i := 0; i < 5; i++ {
		issuer.Refresh(context.Background(), legacy)
	}
	require.Equal(t, 5, store.callCount())

	c := issuer.Refresh(context.Background(), legacy)
	assert.Empty(t, c.Permissions)
	assert.Equal(t, 5, store.callCount(), "open breaker must not reach the store")
}

func TestRefreshNotFoundDoesNotTripBreaker(t *testing.T) {
	store := newStubStore()
	issuer := NewClaimsIssuer(store, time.Second)

	for i := 0; i < 8; i++ {
		issuer.Refresh(context.Background(), authz.Claims{Email: "missing@example.com"})
	}
	assert.Equal(t, 8, store.callCount())
}

func TestReissuePicksUpRoleChange(t *testing.T) {
	store := newStubStore()
	admin := roleWith(2, authz.RoleAdmin, authz.PermDashboardView)
	store.addUser(5, "admin@example.com", "", admin)
	issuer := NewClaimsIssuer(store, time.Second)

	before := issuer.Issue(NewUserRecord(store.users["admin@example.com"]))
	assert.False(t, authz.IsAllowed(before, []string{authz.PermUsersCreate}))

	require.NoError(t, store.SetRolePermissions(context.Background(), 2, []string{authz.PermDashboardView, authz.PermUsersCreate}))
	assert.False(t, authz.IsAllowed(before, []string{authz.PermUsersCreate}), "existing claims stay stale")

	after, err := issuer.Reissue(context.Background(), before)
	require.NoError(t, err)
	assert.True(t, authz.IsAllowed(after, []string{authz.PermUsersCreate}))

	_, err = issuer.Reissue(context.Background(), authz.Claims{UserID: 404})
	assert.ErrorIs(t, err, apperrors.ErrClaimsResolution)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
