package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridematcher/internal/database/mongo"
	"ridematcher/internal/database/redis"
	"ridematcher/internal/matching"
	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// API provides the operational HTTP handlers of the matcher service.
type API struct {
	service *matching.Service
	logger  *logger.Logger
}

// NewAPI creates the handler set.
func NewAPI(service *matching.Service, log *logger.Logger) *API {
	return &API{service: service, logger: log}
}

// HealthHandler reports connectivity of the backing stores.
func (a *API) HealthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{"mongodb": "ok", "redis": "ok"}

	if err := mongo.HealthCheck(ctx); err != nil {
		checks["mongodb"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := redis.HealthCheck(ctx); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}

// StatsHandler reports the number of live searches in the candidate pool.
func (a *API) StatsHandler(c *gin.Context) {
	count, err := a.service.ActiveSearches(c.Request.Context())
	if err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to count active searches")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read candidate pool"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_searches": count})
}
