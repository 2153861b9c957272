package middleware

import (
	"irigasi/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecurityHeaders standard hardening headers, optional HTTPS redirect
func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Security.SSLRedirect,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      cfg.Server.Mode == "debug" && !cfg.Security.SSLRedirect,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		// Process already wrote a redirect
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
