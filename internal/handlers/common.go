package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/middleware"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/logger"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// parseID reads a numeric path parameter; writes 400 and returns false on failure
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds and validates the body, answering 400 with the first field error
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("field %s failed %s validation", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// handleServiceError maps sentinel errors onto response codes
func handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		response.Forbidden(c, err.Error())
	default:
		logger.GetLogger().WithError(err).WithField("path", c.Request.URL.Path).Error(action + " failed")
		response.ServerError(c, action+" failed")
	}
}

// actorClaims claims attached by the route guard; zero value when absent
func actorClaims(c *gin.Context) authz.Claims {
	claims, _ := middleware.CurrentClaims(c)
	return claims
}

// parseTimeQuery accepts RFC3339 or a plain date
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", apperrors.ErrValidation, key)
}
