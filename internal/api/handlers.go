package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/database"
	"github.com/freshkitchen/mealdesk/backend/internal/middleware"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
)

// Dependencies are the shared clients the handlers are built from. Redis and
// Archive may be nil.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Archive service.Archiver
}

// HealthCheck reports whether the API and its database are reachable.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes builds the services and mounts every route under /api/v1.
func RegisterRoutes(router *gin.Engine, deps Dependencies) *service.AuthService {
	router.GET("/health", HealthCheck(deps.DB))
	router.GET("/api/health", HealthCheck(deps.DB))

	cfg := deps.Config
	rules := cfg.TypeRules()
	authService := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.JWTExpiry())

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewLoginRateLimiter(deps.Redis)
	}

	v1 := router.Group("/api/v1")
	NewAuthHandler(authService, limiter).RegisterRoutes(v1)

	staff := v1.Group("")
	staff.Use(middleware.AuthMiddleware(authService))
	kitchen := service.NewKitchenService(deps.DB, deps.Redis)
	NewCustomerHandler(service.NewCustomerService(deps.DB)).RegisterRoutes(staff)
	NewDishHandler(service.NewDishService(deps.DB)).RegisterRoutes(staff)
	NewPlanTemplateHandler(service.NewPlanTemplateService(deps.DB, rules)).RegisterRoutes(staff)
	NewMealPlanHandler(
		service.NewMealPlanService(deps.DB, rules, cfg.DefaultSlots).UseSummaryCache(kitchen),
		service.NewMealPlanItemService(deps.DB).UseSummaryCache(kitchen),
	).RegisterRoutes(staff)
	NewPaymentHandler(service.NewPaymentService(deps.DB)).RegisterRoutes(staff)
	NewKitchenHandler(
		kitchen,
		service.NewExportService(deps.Archive),
	).RegisterRoutes(staff)
	NewImportHandler(service.NewImportService(deps.DB)).RegisterRoutes(staff)

	return authService
}
