package handlers

import (
	"irigasi/internal/services"
	"irigasi/pkg/logger"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"
	"irigasi/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=255"`
	IsDefault   bool   `json:"is_default"`
}

type SetPermissionsRequest struct {
	Permissions    []string `json:"permissions" binding:"required"`
	RevokeSessions bool     `json:"revoke_sessions"`
}

type RoleHandler struct {
	service  *services.RoleService
	users    *services.UserService
	sessions *session.Registry
}

func NewRoleHandler(service *services.RoleService, users *services.UserService, sessions *session.Registry) *RoleHandler {
	return &RoleHandler{
		service:  service,
		users:    users,
		sessions: sessions,
	}
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.service.Create(req.Name, req.Description, req.IsDefault)
	if err != nil {
		handleServiceError(c, err, "create role")
		return
	}
	response.Success(c, role)
}

func (h *RoleHandler) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)
	roles, total, err := h.service.List(page)
	if err != nil {
		handleServiceError(c, err, "list roles")
		return
	}
	response.SuccessWithPage(c, roles, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	role, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get role")
		return
	}
	response.Success(c, role)
}

func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.service.Update(id, req.Name, req.Description, req.IsDefault)
	if err != nil {
		handleServiceError(c, err, "update role")
		return
	}
	response.Success(c, role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		handleServiceError(c, err, "delete role")
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}

// ========== Permissions ==========

func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	perms, err := h.service.GetPermissions(id)
	if err != nil {
		handleServiceError(c, err, "get role permissions")
		return
	}
	response.Success(c, perms)
}

// SetPermissions replaces the permission set. Holders of the role keep their
// old claims until re-login unless revoke_sessions is set.
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SetPermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.service.SetPermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		handleServiceError(c, err, "set role permissions")
		return
	}

	revoked := 0
	if req.RevokeSessions {
		revoked = h.revokeHolders(c, id)
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"actor_id":    actorClaims(c).UserID,
		"role":        role.Name,
		"permissions": len(role.Permissions),
		"revoked":     revoked,
	}).Info("role permissions replaced")

	response.Success(c, gin.H{
		"role":             role,
		"revoked_sessions": revoked,
	})
}

func (h *RoleHandler) revokeHolders(c *gin.Context, roleID uint) int {
	ids, err := h.users.UserIDsWithRole(roleID)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("role_id", roleID).Warn("failed to list role holders")
		return 0
	}

	total := 0
	for _, uid := range ids {
		n, err := h.sessions.RevokeUser(c.Request.Context(), uid, "role permissions changed")
		if err != nil {
			logger.GetLogger().WithError(err).WithField("user_id", uid).Warn("failed to revoke sessions")
			continue
		}
		total += n
	}
	return total
}
