package handlers

import (
	"strconv"

	"irigasi/internal/services"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// LoginAudits ?email=&success=true|false
func (h *AuditHandler) LoginAudits(c *gin.Context) {
	page := pagination.ParsePageParams(c)

	var success *bool
	if raw := c.Query("success"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "success must be true or false")
			return
		}
		success = &v
	}

	rows, total, err := h.service.List(c.Query("email"), success, page)
	if err != nil {
		handleServiceError(c, err, "list login audits")
		return
	}
	response.SuccessWithPage(c, rows, pagination.NewPageInfo(page.Page, page.PageSize, total))
}
