package api

import (
	"github.com/gin-gonic/gin"

	"ridematcher/pkg/logger"
)

// RegisterRoutes attaches the operational endpoints to the router.
func RegisterRoutes(router *gin.Engine, a *API, log *logger.Logger) {
	router.Use(RequestLogger(log))
	router.GET("/health", a.HealthHandler)
	router.GET("/stats", a.StatsHandler)
}
