package handlers

import (
	"context"
	"net/http"
	"time"

	"irigasi/pkg/response"

	"github.com/gin-gonic/gin"
)

// Pinger a dependency the health check pings
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type SystemHandler struct {
	checks map[string]Pinger
}

func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{checks: checks}
}

// Health reports 503 when any dependency fails its ping
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	if status != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    http.StatusServiceUnavailable,
			"message": status,
			"data":    gin.H{"status": status, "components": components, "time": time.Now().Unix()},
		})
		return
	}
	response.Success(c, gin.H{"status": status, "components": components, "time": time.Now().Unix()})
}
