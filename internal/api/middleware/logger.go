package middleware

import (
	"time"

	"facility-ops-api-server/internal/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Errors attached through
// response.Error are logged with their internal cause.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor, ok := CurrentActor(c); ok {
			fields = append(fields, zap.String("user_id", actor.ID.Hex()))
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			fields = append(fields, zap.Error(err))
			if apperror.KindOf(err) == apperror.KindInternal {
				logger.Error("request failed", fields...)
				return
			}
			logger.Warn("request rejected", fields...)
			return
		}
		logger.Info("request handled", fields...)
	}
}
