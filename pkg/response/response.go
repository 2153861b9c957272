package response

import (
	"net/http"

	"irigasi/pkg/errors"
	"irigasi/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response unified envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ========== Success ==========

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 200 with a custom message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage paged list
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error writes the envelope with the HTTP status matching the code
func Error(c *gin.Context, code int, message string) {
	status := code
	if status < 400 || status > 599 {
		status = http.StatusOK
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// ========== HTTP error shortcuts ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, errors.CodeConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}
