package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerly/backend/internal/health"
)

// HealthReporter exposes the last recorded probe of the inference service
type HealthReporter interface {
	Status() health.Status
}

// HealthCheck returns the health status of the API. The API itself stays healthy
// while Ollama is down; suggestions then come back empty.
func HealthCheck(monitor HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status: "healthy",
			Ollama: monitor.Status(),
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, suggestions *SuggestionHandler, monitor HealthReporter, limit gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", HealthCheck(monitor))
	router.GET("/api/health", HealthCheck(monitor))

	v1 := router.Group("/api/v1")
	suggestions.RegisterRoutes(v1, limit)
}
