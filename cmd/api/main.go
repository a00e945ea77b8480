package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/api"
	"github.com/freshkitchen/mealdesk/backend/internal/database"
	"github.com/freshkitchen/mealdesk/backend/internal/logging"
	"github.com/freshkitchen/mealdesk/backend/internal/router"
	"github.com/freshkitchen/mealdesk/backend/internal/server"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel)
	gin.SetMode(cfg.Environment.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(ctx, db, getMigrationsDir()); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	rdb, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and login rate limiting", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := api.Dependencies{Config: cfg, DB: db, Redis: rdb}
	if cfg.S3Bucket != "" {
		s3, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			logger.Error("failed to configure export archive", "error", err)
			os.Exit(1)
		}
		deps.Archive = s3
	}

	if cfg.AdminEmail != "" {
		auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry())
		created, err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to bootstrap admin", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap admin created", "email", cfg.AdminEmail)
		}
	}

	srv := server.New(cfg, router.SetupRouter(deps, logger), logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func getMigrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}
