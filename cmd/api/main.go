package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/cache"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/migrations"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/handlers"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Setup structured logging with JSON format
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, login and bearer tokens are disabled")
	}

	// Initialize database
	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		slog.Error("Error setting up database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = migrations.Run(migrateCtx, db, migrations.Options{
		Seed:          cfg.Database.Seed,
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
	})
	cancelMigrate()
	if err != nil {
		slog.Error("Error running migrations", "error", err)
		os.Exit(1)
	}

	catalog := cache.New[*analytics.Catalog]()
	defer catalog.Close()

	// Configure Fiber for better performance
	app := fiber.New(fiber.Config{
		// Desabilitado modo Prefork pois causa instabilidade no container
		Prefork:      false,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: handlers.ErrorHandler,
	})

	middleware.SetupMiddlewares(app, cfg.Server.AllowedOrigins)
	routes.SetupRoutes(app, db, cfg, catalog)

	go func() {
		slog.Info("Server is running", "port", cfg.Server.Port, "auth_required", cfg.Auth.Required)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exited")
}
