package router

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerly/backend/internal/api"
	"github.com/pageza/grocerly/backend/internal/middleware"
)

// Options carries what the router needs beyond the handlers
type Options struct {
	AllowOrigins []string
	// Limiter guards suggestion generation; nil disables rate limiting
	Limiter middleware.Limiter
	Logger  *log.Logger
}

// SetupRouter configures the application routes
func SetupRouter(suggestionHandler *api.SuggestionHandler, monitor api.HealthReporter, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(middleware.ErrorHandler(opts.Logger))

	// CORS middleware
	router.Use(middleware.CORS(opts.AllowOrigins))

	var limit gin.HandlerFunc
	if opts.Limiter != nil {
		limit = middleware.RateLimit(opts.Limiter, opts.Logger)
	}

	api.RegisterRoutes(router, suggestionHandler, monitor, limit)

	return router
}
