package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthCheck struct {
	name   string
	pinger Pinger
}

// Healthz pings every registered dependency.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := gin.H{}
	for _, check := range h.checks {
		if err := check.pinger.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result[check.name] = err.Error()
			continue
		}
		result[check.name] = "ok"
	}
	c.JSON(status, Response{Success: status == http.StatusOK, Result: result})
}
