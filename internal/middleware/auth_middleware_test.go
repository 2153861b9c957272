package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/jwt"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type fakeSessions struct {
	revoked map[string]bool
	err     error
}

func (f *fakeSessions) IsActive(ctx context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.revoked[tokenID], nil
}

// fakeRefresher re-derives permissions by email like the real issuer
type fakeRefresher struct {
	perms map[string][]string
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context, c authz.Claims) authz.Claims {
	if c.HasPermissions() {
		return c
	}
	f.calls++
	perms, ok := f.perms[c.Email]
	if !ok {
		return c.WithPermissions("", []string{})
	}
	return c.WithPermissions(c.Role, perms)
}

type fakeUsers struct {
	roles map[uint]string
	err   error
}

func (f *fakeUsers) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.roles[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	u := &models.User{Role: &models.Role{Name: name}}
	u.ID = id
	return u, nil
}

type harness struct {
	tokens   *jwt.JWTManager
	sessions *fakeSessions
	refresh  *fakeRefresher
	users    *fakeUsers
	auth     *AuthMiddleware
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		tokens:   jwt.NewJWTManager(testSecret, time.Hour, "test"),
		sessions: &fakeSessions{revoked: map[string]bool{}},
		refresh:  &fakeRefresher{perms: map[string][]string{}},
		users:    &fakeUsers{roles: map[uint]string{}},
	}
	h.auth = NewAuthMiddleware(AuthOptions{
		Tokens:   h.tokens,
		Sessions: h.sessions,
		Claims:   h.refresh,
		Users:    h.users,
		Engine:   authz.NewDefaultEngine(),
	})

	r := gin.New()
	r.Use(h.auth.RouteGuard())

	echo := func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		userID, _ := c.Get(ContextKeyUserID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": claims.Role, "permissions": claims.Permissions})
	}
	r.GET("/admin/dashboard", echo)
	r.GET("/admin/news", echo)
	r.GET("/api/admin/users", echo)
	r.DELETE("/api/admin/users/:id", h.auth.RequirePermission(authz.PermUsersDelete), echo)
	r.POST("/api/admin/water-levels", h.auth.RequireStoredRole(authz.AdministrativeRoles()...), echo)
	r.GET("/api/admin/navigation", h.auth.RequireRole(authz.RoleSuperAdmin), echo)
	r.POST("/api/public/contact", echo)
	r.GET("/api/auth/me", h.auth.RequireAuthenticated(), echo)
	r.GET("/news/latest", echo)
	h.router = r
	return h
}

func (h *harness) token(t *testing.T, userID uint, role string, perms []string) (string, string) {
	t.Helper()
	tok, id, _, err := h.tokens.GenerateToken(userID, fmt.Sprintf("user%d@example.com", userID), role, perms)
	require.NoError(t, err)
	return tok, id
}

func (h *harness) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestClassify(t *testing.T) {
	m := NewAuthMiddleware(AuthOptions{})

	assert.Equal(t, PathPublic, m.Classify("/login"))
	assert.Equal(t, PathPublic, m.Classify("/api/auth/login"))
	assert.Equal(t, PathPublic, m.Classify("/api/public/contact"))
	assert.Equal(t, PathPublic, m.Classify("/metrics"))
	assert.Equal(t, PathAdmin, m.Classify("/admin"))
	assert.Equal(t, PathAdmin, m.Classify("/api/admin/news/3"))
	assert.Equal(t, PathOther, m.Classify("/news/latest"))
	assert.Equal(t, PathOther, m.Classify("/administrator"))
	assert.Equal(t, PathOther, m.Classify("/loginx"))
}

func TestInteractiveWithoutClaimsRedirectsToLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Fdashboard", w.Header().Get("Location"))

	w = h.do(http.MethodGet, "/admin/news?page=2&q=banjir", "")
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Fnews%3Fpage%3D2%26q%3Dbanjir", w.Header().Get("Location"))

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/admin/news?page=2&q=banjir", loc.Query().Get("callbackUrl"))
}

func TestAPIWithoutClaimsIsUnauthorized(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 401, body["code"])

	w = h.do(http.MethodGet, "/api/admin/users", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersListRequiresRead(t *testing.T) {
	h := newHarness(t)

	without, _ := h.token(t, 2, authz.RoleEditor, []string{authz.PermDashboardView})
	w := h.do(http.MethodGet, "/api/admin/users", without)
	assert.Equal(t, http.StatusForbidden, w.Code)

	with, _ := h.token(t, 2, authz.RoleEditor, []string{authz.PermDashboardView, authz.PermUsersRead})
	w = h.do(http.MethodGet, "/api/admin/users", with)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["user_id"])
	assert.Equal(t, authz.RoleEditor, body["role"])
}

func TestInteractiveForbiddenRedirectsWithError(t *testing.T) {
	h := newHarness(t)
	tok, _ := h.token(t, 3, authz.RoleEditor, []string{authz.PermDashboardView})

	w := h.do(http.MethodGet, "/admin/news", tok)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error=AccessDenied", w.Header().Get("Location"))

	w = h.do(http.MethodGet, "/admin/dashboard", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicAndOtherPathsPass(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/public/contact", "").Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/news/latest", "").Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", "").Code)

	tok, _ := h.token(t, 4, authz.RoleEditor, []string{})
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/me", tok).Code)
}

func TestRevokedSessionIsUnauthenticated(t *testing.T) {
	h := newHarness(t)
	tok, id := h.token(t, 5, authz.RoleSuperAdmin, authz.AllPermissionNames())

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/admin/users", tok).Code)

	h.sessions.revoked[id] = true
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/admin/users", tok).Code)
}

func TestSessionRegistryFailureFailsClosed(t *testing.T) {
	h := newHarness(t)
	tok, _ := h.token(t, 5, authz.RoleSuperAdmin, authz.AllPermissionNames())

	h.sessions.err = errors.New("redis down")
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/admin/users", tok).Code)
}

func TestLegacyTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	h.refresh.perms["user6@example.com"] = []string{authz.PermDashboardView, authz.PermUsersRead}

	legacy := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":   "6",
		"email": "user6@example.com",
		"role":  authz.RoleAdmin,
		"jti":   "legacy-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := legacy.SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := h.do(http.MethodGet, "/api/admin/users", signed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, h.refresh.calls)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.ElementsMatch(t, []interface{}{authz.PermDashboardView, authz.PermUsersRead}, body["permissions"])
}

func TestLegacyTokenForUnknownUserIsDenied(t *testing.T) {
	h := newHarness(t)

	legacy := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":   "66",
		"email": "gone@example.com",
		"role":  authz.RoleSuperAdmin,
		"jti":   "legacy-2",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := legacy.SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/admin/users", signed).Code)
}

func TestSessionCookieAccepted(t *testing.T) {
	h := newHarness(t)
	tok, _ := h.token(t, 7, authz.RoleEditor, []string{authz.PermDashboardView})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: tok})
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerLevelPermissionGate(t *testing.T) {
	h := newHarness(t)

	tok, _ := h.token(t, 8, authz.RoleAdmin, []string{authz.PermDashboardView, authz.PermUsersDelete})
	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/admin/users/9", tok).Code)

	// the handler gate alone, without the route guard in front
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/admin/users/9", nil)
	c.Request = c.Request.WithContext(authz.ContextWithClaims(c.Request.Context(),
		authz.Claims{UserID: 8, Role: authz.RoleAdmin, Permissions: []string{authz.PermDashboardView}}))
	h.auth.RequirePermission(authz.PermUsersDelete)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRoleGateIgnoresPermissions(t *testing.T) {
	h := newHarness(t)

	editor, _ := h.token(t, 9, authz.RoleEditor, authz.AllPermissionNames())
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/admin/navigation", editor).Code)

	super, _ := h.token(t, 10, authz.RoleSuperAdmin, []string{authz.PermDashboardView})
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/admin/navigation", super).Code)
}

func TestStoredRoleGateReadsStore(t *testing.T) {
	h := newHarness(t)
	tok, _ := h.token(t, 11, authz.RoleAdmin, []string{authz.PermDashboardView})

	h.users.roles[11] = authz.RoleAdmin
	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/admin/water-levels", tok).Code)

	// demoted after the token was issued
	h.users.roles[11] = authz.RoleEditor
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/admin/water-levels", tok).Code)

	delete(h.users.roles, 11)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/admin/water-levels", tok).Code)

	h.users.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, h.do(http.MethodPost, "/api/admin/water-levels", tok).Code)
}
