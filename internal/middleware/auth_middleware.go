package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/jwt"
	"irigasi/pkg/logger"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// gin context keys set for downstream handlers
const (
	ContextKeyClaims         = "claims"
	ContextKeyUserID         = "user_id"
	ContextKeyRole           = "role"
	ContextKeyTokenID        = "token_id"
	ContextKeyTokenExpiresAt = "token_expires_at"
)

// PathClass how the route guard treats a request path
type PathClass int

const (
	PathOther PathClass = iota
	PathPublic
	PathAdmin
)

func (p PathClass) String() string {
	switch p {
	case PathPublic:
		return "public"
	case PathAdmin:
		return "admin"
	default:
		return "other"
	}
}

type TokenVerifier interface {
	VerifyToken(token string) (*jwt.TokenClaims, error)
}

type SessionChecker interface {
	IsActive(ctx context.Context, tokenID string) (bool, error)
}

type ClaimsRefresher interface {
	Refresh(ctx context.Context, c authz.Claims) authz.Claims
}

// UserLookup reads the current role of a user from the identity store
type UserLookup interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthOptions wiring for AuthMiddleware. Sessions may be nil.
type AuthOptions struct {
	Tokens     TokenVerifier
	Sessions   SessionChecker
	Claims     ClaimsRefresher
	Users      UserLookup
	Engine     *authz.Engine
	CookieName string
	LoginPath  string
}

// AuthMiddleware the route guard and the handler-level gates
type AuthMiddleware struct {
	tokens      TokenVerifier
	sessions    SessionChecker
	claims      ClaimsRefresher
	users       UserLookup
	engine      *authz.Engine
	cookieName  string
	loginPath   string
	publicPaths []string
}

func NewAuthMiddleware(opts AuthOptions) *AuthMiddleware {
	if opts.CookieName == "" {
		opts.CookieName = "session_token"
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.Engine == nil {
		opts.Engine = authz.NewDefaultEngine()
	}
	return &AuthMiddleware{
		tokens:     opts.Tokens,
		sessions:   opts.Sessions,
		claims:     opts.Claims,
		users:      opts.Users,
		engine:     opts.Engine,
		cookieName: opts.CookieName,
		loginPath:  opts.LoginPath,
		publicPaths: []string{
			opts.LoginPath,
			"/api/auth",
			"/api/public",
			"/api/v1/health",
			"/metrics",
		},
	}
}

// Classify public paths first, then administrative ones, everything else is other
func (m *AuthMiddleware) Classify(path string) PathClass {
	for _, p := range m.publicPaths {
		if authz.HasPathPrefix(path, p) {
			return PathPublic
		}
	}
	if m.engine.IsAdministrativePath(path) {
		return PathAdmin
	}
	return PathOther
}

// ========== Route guard ==========

// RouteGuard runs before every handler. Public and other paths pass
// (other paths are allowed by default); administrative paths need valid
// claims that pass the decision engine.
func (m *AuthMiddleware) RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		class := m.Classify(path)

		if class != PathAdmin {
			// attach identity when present so public endpoints like /api/auth/me can use it
			if claims, tc, err := m.authenticate(c); err == nil {
				m.forward(c, claims, tc)
			}
			c.Next()
			return
		}

		log := logger.GetLogger().WithFields(logrus.Fields{
			"path":   path,
			"method": c.Request.Method,
		})

		claims, tc, err := m.authenticate(c)
		if err != nil {
			authz.RecordDecision(authz.GateRoute, false, "unauthenticated")
			log.WithError(err).Debug("route guard: unauthenticated")
			m.denyUnauthenticated(c)
			return
		}

		d := m.engine.Decide(claims, path, c.Request.Method)
		authz.RecordDecision(authz.GateRoute, d.Allowed, d.Reason)
		if !d.Allowed {
			fields := logrus.Fields{"user_id": claims.UserID, "role": claims.Role, "reason": d.Reason}
			if d.Rule != nil {
				fields["rule"] = d.Rule.Gate.String()
			}
			log.WithFields(fields).Info("route guard: access denied")
			m.denyForbidden(c)
			return
		}

		m.forward(c, claims, tc)
		c.Next()
	}
}

// ========== Handler-level gates ==========

// RequireAuthenticated rejects requests without claims
func (m *AuthMiddleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentClaims(c); !ok {
			response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission permission-membership gate, every permission is required
func (m *AuthMiddleware) RequirePermission(perms ...string) gin.HandlerFunc {
	rule := authz.Permission(perms...)
	return m.requireRule(authz.GatePermission, rule)
}

// RequireRole role-identity gate on the claims
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	rule := authz.Roles(roles...)
	return m.requireRule(authz.GateRole, rule)
}

func (m *AuthMiddleware) requireRule(gate string, rule authz.GateRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
			c.Abort()
			return
		}

		allowed := authz.Evaluate(rule, claims)
		authz.RecordDecision(gate, allowed, authz.ReasonRule)
		if !allowed {
			response.Forbidden(c, fmt.Sprintf("%s: requires %s", apperrors.ErrForbidden.Error(), rule))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStoredRole role-identity gate that re-reads the role from the
// identity store on every request instead of trusting the claims.
func (m *AuthMiddleware) RequireStoredRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
			c.Abort()
			return
		}

		user, err := m.users.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				authz.RecordDecision(authz.GateStoredRole, false, "user_not_found")
				response.Forbidden(c, apperrors.ErrForbidden.Error())
				c.Abort()
				return
			}
			logger.GetLogger().WithError(err).WithField("user_id", claims.UserID).Error("stored role lookup failed")
			response.ServerError(c, "authorization check failed")
			c.Abort()
			return
		}

		stored := claims
		stored.Role = user.RoleName()
		allowed := authz.Evaluate(authz.Roles(roles...), stored)
		authz.RecordDecision(authz.GateStoredRole, allowed, authz.ReasonRule)
		if !allowed {
			response.Forbidden(c, fmt.Sprintf("%s: requires role %s", apperrors.ErrForbidden.Error(), strings.Join(roles, " or ")))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClaims claims forwarded by the route guard
func CurrentClaims(c *gin.Context) (authz.Claims, bool) {
	return authz.ClaimsFromContext(c.Request.Context())
}

// ========== helpers ==========

func (m *AuthMiddleware) authenticate(c *gin.Context) (authz.Claims, *jwt.TokenClaims, error) {
	raw := m.extractToken(c)
	if raw == "" {
		return authz.Claims{}, nil, apperrors.ErrUnauthenticated
	}

	tc, err := m.tokens.VerifyToken(raw)
	if err != nil {
		return authz.Claims{}, nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}
	userID, err := tc.UserID()
	if err != nil {
		return authz.Claims{}, nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	ctx := c.Request.Context()
	if m.sessions != nil {
		active, err := m.sessions.IsActive(ctx, tc.ID)
		if err != nil {
			logger.GetLogger().WithError(err).Error("session registry unavailable")
			return authz.Claims{}, nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
		}
		if !active {
			return authz.Claims{}, nil, fmt.Errorf("%w: session revoked", apperrors.ErrUnauthenticated)
		}
	}

	claims := authz.Claims{
		UserID:      userID,
		Email:       tc.Email,
		Role:        tc.Role,
		Permissions: tc.Permissions,
	}
	return m.claims.Refresh(ctx, claims), tc, nil
}

// extractToken Authorization header first, then the session cookie;
// websocket upgrades may pass access_token in the query
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("access_token")
	}
	return ""
}

func (m *AuthMiddleware) forward(c *gin.Context, claims authz.Claims, tc *jwt.TokenClaims) {
	c.Request = c.Request.WithContext(authz.ContextWithClaims(c.Request.Context(), claims))
	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyRole, claims.Role)
	if tc != nil {
		c.Set(ContextKeyTokenID, tc.ID)
		if tc.ExpiresAt != nil {
			c.Set(ContextKeyTokenExpiresAt, tc.ExpiresAt.Time)
		}
	}
}

func (m *AuthMiddleware) denyUnauthenticated(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
		c.Abort()
		return
	}
	c.Redirect(http.StatusFound, m.loginURL(url.Values{"callbackUrl": {c.Request.URL.RequestURI()}}))
	c.Abort()
}

// denyForbidden interactive requests go back to the login page with an
// error marker, the same target as unauthenticated ones
func (m *AuthMiddleware) denyForbidden(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		response.Forbidden(c, apperrors.ErrForbidden.Error())
		c.Abort()
		return
	}
	c.Redirect(http.StatusFound, m.loginURL(url.Values{"error": {"AccessDenied"}}))
	c.Abort()
}

func isAPIPath(path string) bool {
	return authz.HasPathPrefix(path, "/api")
}

func (m *AuthMiddleware) loginURL(q url.Values) string {
	return m.loginPath + "?" + q.Encode()
}
