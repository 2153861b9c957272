package handlers

import (
	"irigasi/internal/authz"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler the admin shell entry and its navigation
type AdminHandler struct {
	engine *authz.Engine
}

func NewAdminHandler(engine *authz.Engine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

// Shell answers any /admin page the route guard let through
func (h *AdminHandler) Shell(c *gin.Context) {
	claims := actorClaims(c)
	response.Success(c, gin.H{
		"path":       c.Request.URL.Path,
		"role":       claims.Role,
		"navigation": h.engine.VisibleNavigation(claims),
	})
}

// Navigation ids and entries visible to the caller
func (h *AdminHandler) Navigation(c *gin.Context) {
	claims := actorClaims(c)
	response.Success(c, gin.H{
		"visible": h.engine.NavigationVisibility(claims),
		"entries": h.engine.VisibleNavigation(claims),
	})
}
