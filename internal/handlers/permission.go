package handlers

import (
	"irigasi/internal/services"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

// GetAll ?category= filters, ?grouped=true buckets by category
func (h *PermissionHandler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("grouped") == "true" {
		groups, err := h.service.Grouped(ctx)
		if err != nil {
			handleServiceError(c, err, "list permissions")
			return
		}
		response.Success(c, groups)
		return
	}

	perms, err := h.service.List(ctx, c.Query("category"))
	if err != nil {
		handleServiceError(c, err, "list permissions")
		return
	}
	response.Success(c, perms)
}

func (h *PermissionHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	perm, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get permission")
		return
	}
	response.Success(c, perm)
}
