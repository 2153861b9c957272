package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	"irigasi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountStore(t *testing.T) *memStore {
	t.Helper()

	superRole := &models.Role{Name: authz.RoleSuperAdmin}
	superRole.ID = 1
	editorRole := &models.Role{Name: authz.RoleEditor}
	editorRole.ID = 3

	root := &models.User{Email: "root@irigasi.test", Name: "Root", Role: superRole, RoleID: &superRole.ID}
	root.ID = 1
	require.NoError(t, root.SetPassword("root-password"))

	editor := &models.User{Email: editorEmail, Name: "Editor", Role: editorRole, RoleID: &editorRole.ID}
	editor.ID = 7

	return &memStore{
		users: map[string]*models.User{root.Email: root, editor.Email: editor},
		roles: map[uint]*models.Role{superRole.ID: superRole, editorRole.ID: editorRole},
	}
}

// userRouter mounts the user endpoints behind fixed caller claims
func userRouter(store *memStore, caller authz.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(services.NewUserService(nil), store, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(authz.ContextWithClaims(c.Request.Context(), caller))
	})
	r.PUT("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	r.PUT("/users/:id/password", h.ResetPassword)
	r.PUT("/users/:id/role", h.AssignRole)
	r.POST("/users/:id/sessions/revoke", h.RevokeSessions)
	return r
}

func TestAdminCannotTakeOverSuperAdmin(t *testing.T) {
	store := newAccountStore(t)
	admin := authz.Claims{UserID: 5, Role: authz.RoleAdmin, Permissions: []string{authz.PermDashboardView, authz.PermUsersEdit}}
	r := userRouter(store, admin)

	requests := []struct {
		method, path, body string
	}{
		{http.MethodPut, "/users/1/password", `{"new_password":"taken-over-123"}`},
		{http.MethodPut, "/users/1", `{"email":"admin@evil.test"}`},
		{http.MethodDelete, "/users/1", ``},
		{http.MethodPut, "/users/1/role", `{"role_id":3}`},
		{http.MethodPost, "/users/1/sessions/revoke", ``},
	}
	for _, tc := range requests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
	}

	root, err := store.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, root.CheckPassword("root-password"))
	assert.False(t, root.CheckPassword("taken-over-123"))
	assert.Equal(t, "root@irigasi.test", root.Email)
}

func TestUserActionOnUnknownTarget(t *testing.T) {
	store := newAccountStore(t)
	r := userRouter(store, authz.Claims{UserID: 1, Role: authz.RoleSuperAdmin, Permissions: authz.AllPermissionNames()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/99/password", strings.NewReader(`{"new_password":"whatever-123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCanManage(t *testing.T) {
	tests := []struct {
		actor, target string
		want          bool
	}{
		{authz.RoleSuperAdmin, authz.RoleSuperAdmin, true},
		{authz.RoleSuperAdmin, authz.RoleAdmin, true},
		{authz.RoleSuperAdmin, authz.RoleEditor, true},
		{authz.RoleAdmin, authz.RoleSuperAdmin, false},
		{authz.RoleAdmin, authz.RoleAdmin, false},
		{authz.RoleAdmin, authz.RoleEditor, true},
		{authz.RoleAdmin, "", true},
		{authz.RoleEditor, authz.RoleAdmin, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, canManage(tc.actor, tc.target), tc.actor+" -> "+tc.target)
	}
}
