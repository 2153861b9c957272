package handlers

import (
	"irigasi/internal/services"
	"irigasi/pkg/pagination"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ResourceHandler CRUD endpoints over a CRUDService. R is the request body,
// apply copies it onto the model.
type ResourceHandler[T any, R any] struct {
	service *services.CRUDService[T]
	what    string
	apply   func(req *R, item *T) error
	filters func(c *gin.Context) ([]func(*gorm.DB) *gorm.DB, error)
	stamp   func(actorID uint, item *T)
}

func (h *ResourceHandler[T, R]) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)

	var scopes []func(*gorm.DB) *gorm.DB
	if h.filters != nil {
		var err error
		if scopes, err = h.filters(c); err != nil {
			handleServiceError(c, err, "list "+h.what)
			return
		}
	}

	items, total, err := h.service.List(page, scopes...)
	if err != nil {
		handleServiceError(c, err, "list "+h.what)
		return
	}
	response.SuccessWithPage(c, items, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

func (h *ResourceHandler[T, R]) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "get "+h.what)
		return
	}
	response.Success(c, item)
}

func (h *ResourceHandler[T, R]) Create(c *gin.Context) {
	var req R
	if !bindJSON(c, &req) {
		return
	}

	item := new(T)
	if err := h.apply(&req, item); err != nil {
		handleServiceError(c, err, "create "+h.what)
		return
	}
	if h.stamp != nil {
		h.stamp(actorClaims(c).UserID, item)
	}
	if err := h.service.Create(item); err != nil {
		handleServiceError(c, err, "create "+h.what)
		return
	}
	response.Success(c, item)
}

func (h *ResourceHandler[T, R]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req R
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.service.Update(id, func(item *T) error {
		if err := h.apply(&req, item); err != nil {
			return err
		}
		if h.stamp != nil {
			h.stamp(actorClaims(c).UserID, item)
		}
		return nil
	})
	if err != nil {
		handleServiceError(c, err, "update "+h.what)
		return
	}
	response.Success(c, item)
}

func (h *ResourceHandler[T, R]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		handleServiceError(c, err, "delete "+h.what)
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}
