package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/api"
	"github.com/freshkitchen/mealdesk/backend/internal/middleware"
)

// SetupRouter configures the engine middleware and the application routes.
func SetupRouter(deps api.Dependencies, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(deps.Config.CORSOrigins))
	router.NoRoute(middleware.NotFound())

	api.RegisterRoutes(router, deps)
	return router
}
