package handlers

import (
	"irigasi/internal/models"
	"irigasi/internal/services"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
)

type NewsRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	Summary    string `json:"summary" binding:"max=500"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image" binding:"omitempty,url,max=500"`
}

type PublishRequest struct {
	Published *bool `json:"published"`
}

type NewsHandler struct {
	service *services.NewsService
}

func NewNewsHandler(service *services.NewsService) *NewsHandler {
	return &NewsHandler{service: service}
}

func (r NewsRequest) input() services.NewsInput {
	return services.NewsInput{
		Title:      r.Title,
		Summary:    r.Summary,
		Content:    r.Content,
		CoverImage: r.CoverImage,
	}
}

// GetAll ?status=draft|published&search=
func (h *NewsHandler) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)
	status := c.Query("status")
	if status != "" && status != models.NewsStatusDraft && status != models.NewsStatusPublished {
		response.BadRequest(c, "status must be draft or published")
		return
	}

	items, total, err := h.service.List(status, c.Query("search"), page)
	if err != nil {
		handleServiceError(c, err, "list news")
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *NewsHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get news")
		return
	}
	response.Success(c, item)
}

func (h *NewsHandler) Create(c *gin.Context) {
	var req NewsRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(actorClaims(c).UserID, req.input())
	if err != nil {
		handleServiceError(c, err, "create news")
		return
	}
	response.Success(c, item)
}

func (h *NewsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req NewsRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(id, req.input())
	if err != nil {
		handleServiceError(c, err, "update news")
		return
	}
	response.Success(c, item)
}

// Publish publishes by default; {"published": false} withdraws
func (h *NewsHandler) Publish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	publish := true
	if c.Request.ContentLength > 0 {
		var req PublishRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Published != nil {
			publish = *req.Published
		}
	}

	item, err := h.service.SetPublished(id, publish)
	if err != nil {
		handleServiceError(c, err, "publish news")
		return
	}
	response.Success(c, item)
}

func (h *NewsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		handleServiceError(c, err, "delete news")
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}
