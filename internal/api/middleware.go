package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// RequestLogger logs one structured entry per request with a generated
// trace id, mirroring what the log pipeline expects from every service.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()
		c.Set("traceID", traceID)
		start := time.Now()

		c.Next()

		log.WithField("trace_id", traceID).WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}).WithPayload(map[string]interface{}{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}
