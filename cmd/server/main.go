package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/config"
	"github.com/Rahnken/ReframeMe-backend/internal/database"
	"github.com/Rahnken/ReframeMe-backend/internal/logger"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/routes"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		fatal("failed to run migrations", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		slog.Info("OPENAI_API_KEY not set, goal suggestions disabled")
	}

	emailService := services.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppURL, cfg.IsDevelopment())

	authService := services.NewAuthService(userRepo, resetRepo, emailService, services.AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		JWTExpiry:   cfg.JWTExpiry,
		ResetExpiry: cfg.TokenPasswordResetExpiry,
		BcryptCost:  cfg.BcryptCost,
	})

	resetLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	go resetLimiter.RunCleanup(cfg.AuthRateWindow, nil)

	r := routes.New(routes.Services{
		Auth:         authService,
		Users:        services.NewUserService(userRepo, notificationRepo),
		Goals:        services.NewGoalService(goalRepo, groupRepo, aiService, nil),
		Groups:       services.NewGroupService(groupRepo, userRepo, nil),
		ResetLimiter: resetLimiter,
	})

	// Start server
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "db_driver", cfg.DBDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		fatal("server failed", err)
	}
}

// fatal logs err, flushes pending Sentry events and exits.
func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}
