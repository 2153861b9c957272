package handlers

import (
	"context"
	"strconv"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	"irigasi/internal/services"
	"irigasi/pkg/logger"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"
	"irigasi/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
	Role     string `json:"role" binding:"max=50"` // empty means the default role
}

type UpdateUserRequest struct {
	Email string `json:"email" binding:"omitempty,email,max=100"`
	Name  string `json:"name" binding:"max=100"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

type AssignRoleRequest struct {
	RoleID         uint `json:"role_id" binding:"required"`
	RevokeSessions bool `json:"revoke_sessions"`
}

// TargetLookup reads the account an administrative action is aimed at
type TargetLookup interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

type UserHandler struct {
	service  *services.UserService
	targets  TargetLookup
	sessions *session.Registry
}

func NewUserHandler(service *services.UserService, targets TargetLookup, sessions *session.Registry) *UserHandler {
	return &UserHandler{
		service:  service,
		targets:  targets,
		sessions: sessions,
	}
}

// ========== CRUD ==========

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.Create(req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		handleServiceError(c, err, "create user")
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get user")
		return
	}
	response.Success(c, user)
}

// GetAll supports ?search= and ?role_id=
func (h *UserHandler) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)

	var roleID uint
	if raw := c.Query("role_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid role_id")
			return
		}
		roleID = uint(id)
	}

	users, total, err := h.service.List(c.Query("search"), roleID, page)
	if err != nil {
		handleServiceError(c, err, "list users")
		return
	}
	response.SuccessWithPage(c, users, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.guardTarget(c, id) {
		return
	}

	user, err := h.service.Update(id, req.Email, req.Name)
	if err != nil {
		handleServiceError(c, err, "update user")
		return
	}
	response.Success(c, user)
}

// Delete also drops the user's sessions
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if !h.guardTarget(c, id) {
		return
	}
	if err := h.service.Delete(actorClaims(c).UserID, id); err != nil {
		handleServiceError(c, err, "delete user")
		return
	}
	h.revokeSessions(c, id, "user deleted")
	response.SuccessWithMessage(c, "deleted", nil)
}

// ========== Role, password, sessions ==========

// AssignRole takes effect at the user's next login unless revoke_sessions is set
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.guardTarget(c, id) {
		return
	}

	user, err := h.service.AssignRole(actorClaims(c).Role, id, req.RoleID)
	if err != nil {
		handleServiceError(c, err, "assign role")
		return
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"actor_id": actorClaims(c).UserID,
		"user_id":  id,
		"role":     user.RoleName(),
	}).Info("role assigned")

	if req.RevokeSessions {
		h.revokeSessions(c, id, "role changed")
	}
	response.Success(c, user)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.guardTarget(c, id) {
		return
	}

	if err := h.service.ResetPassword(id, req.NewPassword); err != nil {
		handleServiceError(c, err, "reset password")
		return
	}
	h.revokeSessions(c, id, "password reset")
	response.SuccessWithMessage(c, "password updated", nil)
}

// Sessions lists the user's active sessions
func (h *UserHandler) Sessions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.sessions.ListUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "list sessions")
		return
	}
	response.Success(c, list)
}

// RevokeSessions forces the user to log in again, picking up role changes
func (h *UserHandler) RevokeSessions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if !h.guardTarget(c, id) {
		return
	}

	n, err := h.sessions.RevokeUser(c.Request.Context(), id, "revoked by administrator")
	if err != nil {
		handleServiceError(c, err, "revoke sessions")
		return
	}
	response.Success(c, gin.H{"revoked": n})
}

func (h *UserHandler) revokeSessions(c *gin.Context, userID uint, reason string) {
	if _, err := h.sessions.RevokeUser(c.Request.Context(), userID, reason); err != nil {
		logger.GetLogger().WithError(err).WithField("user_id", userID).Warn("failed to revoke sessions")
	}
}

// guardTarget answers 403 when the caller may not manage the target account
func (h *UserHandler) guardTarget(c *gin.Context, id uint) bool {
	target, err := h.targets.FindUserByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "load user")
		return false
	}

	actor := actorClaims(c)
	if !canManage(actor.Role, target.RoleName()) {
		logger.GetLogger().WithFields(logrus.Fields{
			"actor_id":    actor.UserID,
			"actor_role":  actor.Role,
			"user_id":     id,
			"target_role": target.RoleName(),
		}).Warn("refused action on administrative account")
		response.Forbidden(c, "only a super admin may manage administrative accounts")
		return false
	}
	return true
}

// canManage administrative accounts are managed by super admins only
func canManage(actorRole, targetRole string) bool {
	return actorRole == authz.RoleSuperAdmin || !authz.IsAdministrativeRole(targetRole)
}
