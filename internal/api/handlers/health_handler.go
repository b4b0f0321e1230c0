package handlers

import (
	"context"
	"net/http"
	"time"

	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/apperror"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	// Ping checks the database; nil reports healthy without a check.
	Ping func(ctx context.Context) error
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			_ = c.Error(apperror.Internal(err, "database unreachable"))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Envelope{
				Status:  response.StatusError,
				Message: "Database unavailable",
			})
			return
		}
	}
	response.OK(c, gin.H{"database": "up", "time": time.Now().UTC()})
}
