package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/middleware"
	"irigasi/internal/models"
	"irigasi/internal/services"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/jwt"
	"irigasi/pkg/logger"
	"irigasi/pkg/response"
	"irigasi/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoginRecorder persists login attempts
type LoginRecorder interface {
	RecordLogin(ctx context.Context, entry models.LoginAudit)
}

// LoginToucher stamps the last successful login
type LoginToucher interface {
	TouchLastLogin(id uint) error
}

// CookieOptions session cookie settings
type CookieOptions struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth     *services.AuthService
	issuer   *services.ClaimsIssuer
	tokens   *jwt.JWTManager
	sessions *session.Registry
	audit    LoginRecorder
	users    LoginToucher
	engine   *authz.Engine
	cookie   CookieOptions
}

func NewAuthHandler(
	auth *services.AuthService,
	issuer *services.ClaimsIssuer,
	tokens *jwt.JWTManager,
	sessions *session.Registry,
	audit LoginRecorder,
	users LoginToucher,
	engine *authz.Engine,
	cookie CookieOptions,
) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "session_token"
	}
	return &AuthHandler{
		auth:     auth,
		issuer:   issuer,
		tokens:   tokens,
		sessions: sessions,
		audit:    audit,
		users:    users,
		engine:   engine,
		cookie:   cookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token       string           `json:"token"`
	ExpiresAt   int64            `json:"expires_at"`
	User        UserInfo         `json:"user"`
	Permissions []string         `json:"permissions"`
	Navigation  []authz.NavEntry `json:"navigation"`
}

// Login verifies credentials and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordLogin(c, req.Email, nil, false, models.LoginReasonValidation)
		response.BadRequest(c, validationMessage(err))
		return
	}

	rec, err := h.auth.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin(c, req.Email, nil, false, models.LoginReasonInvalidCredentials)
		response.Unauthorized(c, apperrors.ErrInvalidCredentials.Error())
		return
	}

	claims := h.issuer.Issue(rec)
	resp, err := h.openSession(c, claims, rec.User.Name)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("user_id", claims.UserID).Error("failed to open session")
		response.ServerError(c, "login failed")
		return
	}

	h.recordLogin(c, req.Email, &claims.UserID, true, models.LoginReasonOK)
	if err := h.users.TouchLastLogin(claims.UserID); err != nil {
		logger.GetLogger().WithError(err).WithField("user_id", claims.UserID).Warn("failed to update last login")
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"user_id": claims.UserID,
		"role":    claims.Role,
	}).Info("user logged in")
	response.Success(c, resp)
}

// Logout revokes the presented session. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if tokenID := c.GetString(middleware.ContextKeyTokenID); tokenID != "" {
		if err := h.sessions.Revoke(c.Request.Context(), tokenID, "logout"); err != nil {
			logger.GetLogger().WithError(err).WithField("token_id", tokenID).Warn("failed to revoke session on logout")
		}
	}
	h.clearCookie(c)
	response.SuccessWithMessage(c, "logged out", nil)
}

// Refresh re-derives claims from the store and swaps the session for a new one
func (h *AuthHandler) Refresh(c *gin.Context) {
	current, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
		return
	}

	claims, err := h.issuer.Reissue(c.Request.Context(), current)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.Unauthorized(c, apperrors.ErrClaimsResolution.Error())
			return
		}
		logger.GetLogger().WithError(err).WithField("user_id", current.UserID).Error("failed to reissue claims")
		response.ServerError(c, apperrors.ErrClaimsResolution.Error())
		return
	}

	resp, err := h.openSession(c, claims, "")
	if err != nil {
		logger.GetLogger().WithError(err).WithField("user_id", claims.UserID).Error("failed to open session")
		response.ServerError(c, "refresh failed")
		return
	}

	if old := c.GetString(middleware.ContextKeyTokenID); old != "" {
		if err := h.sessions.Revoke(c.Request.Context(), old, "refreshed"); err != nil {
			logger.GetLogger().WithError(err).WithField("token_id", old).Warn("failed to revoke previous session")
		}
	}
	response.Success(c, resp)
}

// Me current claims with their navigation
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, apperrors.ErrUnauthenticated.Error())
		return
	}

	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	response.Success(c, gin.H{
		"user": UserInfo{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		},
		"permissions": permissions,
		"navigation":  h.engine.VisibleNavigation(claims),
	})
}

// ========== helpers ==========

func (h *AuthHandler) openSession(c *gin.Context, claims authz.Claims, name string) (*LoginResponse, error) {
	token, tokenID, expiresAt, err := h.tokens.GenerateToken(claims.UserID, claims.Email, claims.Role, claims.Permissions)
	if err != nil {
		return nil, err
	}

	err = h.sessions.Register(c.Request.Context(), session.Info{
		TokenID:   tokenID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(time.Until(expiresAt).Seconds()), "/", "", h.cookie.Secure, true)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User: UserInfo{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  name,
			Role:  claims.Role,
		},
		Permissions: claims.Permissions,
		Navigation:  h.engine.VisibleNavigation(claims),
	}, nil
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) recordLogin(c *gin.Context, email string, userID *uint, success bool, reason string) {
	if h.audit == nil {
		return
	}
	h.audit.RecordLogin(c.Request.Context(), models.LoginAudit{
		Email:     email,
		UserID:    userID,
		Success:   success,
		Reason:    reason,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
