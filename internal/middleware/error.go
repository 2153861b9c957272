package middleware

import (
	"irigasi/pkg/logger"
	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler recovers panics into a 500 envelope
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().WithFields(logrus.Fields{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Errorf("Panic recovered: %v", err)
				response.ServerError(c, "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
