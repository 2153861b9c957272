package handlers

import (
	"irigasi/internal/services"
	"irigasi/pkg/logger"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=100"`
	Phone   string `json:"phone" binding:"max=30"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

type ContactStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read replied archived"`
	Note   string `json:"note" binding:"max=2000"`
}

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit the public contact form
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.service.Submit(req.Name, req.Email, req.Phone, req.Subject, req.Message)
	if err != nil {
		handleServiceError(c, err, "submit contact form")
		return
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"submission_id": item.ID,
		"ip":            c.ClientIP(),
	}).Info("contact form submitted")
	response.SuccessWithMessage(c, "thank you, your message has been received", gin.H{"id": item.ID})
}

func (h *ContactHandler) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)
	status := c.Query("status")
	if status != "" && !services.IsContactStatus(status) {
		response.BadRequest(c, "unknown status")
		return
	}

	items, total, err := h.service.List(status, page)
	if err != nil {
		handleServiceError(c, err, "list contact submissions")
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *ContactHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get contact submission")
		return
	}
	response.Success(c, item)
}

func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ContactStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateStatus(id, req.Status, req.Note)
	if err != nil {
		handleServiceError(c, err, "update contact submission")
		return
	}
	response.Success(c, item)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		handleServiceError(c, err, "delete contact submission")
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}
