package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/plcassist/backend/docs"
	"github.com/plcassist/backend/internal/app"
	"github.com/plcassist/backend/internal/config"
	"github.com/plcassist/backend/internal/logger"
	"go.uber.org/zap"
)

// @title PLC Maintenance Assistant API
// @version 1.0
// @description Error lookup, remedies, parts and schematics for PLC maintenance with token based authentication
// @termsOfService http://swagger.io/terms/

// @host localhost:8002
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting PLC Maintenance Assistant",
		zap.String("users_file", cfg.Storage.UsersFile),
	)

	if cfg.UsesDefaultSecret() {
		logger.Logger.Warn("JWT_SECRET is not set, using the built-in default secret; set JWT_SECRET in production")
	}

	application, err := app.New(context.Background(), cfg, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      application.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
