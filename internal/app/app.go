// Package app wires configuration, storage, services and handlers into the HTTP router
package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	authMiddleware "github.com/plcassist/backend/internal/auth/middleware"
	"github.com/plcassist/backend/internal/auth/service"
	"github.com/plcassist/backend/internal/config"
	"github.com/plcassist/backend/internal/handlers"
	loggerMiddleware "github.com/plcassist/backend/internal/logger/middleware"
	sharedMiddleware "github.com/plcassist/backend/internal/middleware"
	"github.com/plcassist/backend/internal/models"
	"github.com/plcassist/backend/internal/repositories"
	"github.com/plcassist/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// App holds the assembled application
type App struct {
	Router http.Handler
	Tokens *service.TokenGenerator
	Hasher *service.PasswordHasher
}

// New loads the user file and the catalog and builds the router.
// Errors are startup failures and should stop the process.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	tokenGenerator, err := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generator: %w", err)
	}
	hasher := service.NewPasswordHasher(cfg.BcryptCost)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(cfg.Storage.UsersFile, hasher, logger)
	if err := userRepo.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	catalogRepo, err := repositories.NewCatalogRepository(cfg.Storage.CatalogFile, logger)
	if err != nil {
		return nil, err
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, hasher, tokenGenerator, logger)
	adminService := services.NewAdminService(userRepo, hasher, logger)
	lookupService := services.NewLookupService(catalogRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger)
	lookupHandler := handlers.NewLookupHandler(lookupService, logger)
	healthHandler := handlers.NewHealthHandler(logger)

	// Initialize auth middleware
	authMW := authMiddleware.AuthMiddleware(tokenGenerator, userRepo)
	adminMW := authMiddleware.RoleMiddleware(models.RoleAdmin)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Group(func(r chi.Router) {
		r.Use(sharedMiddleware.SecureHeadersMiddleware())

		r.Get("/health", healthHandler.Health)

		// Scope router to /api
		r.Route("/api", func(r chi.Router) {
			authHandler.RegisterRoutes(r)
			lookupHandler.RegisterRoutes(r, authMW)
			// Register admin routes with auth and role middleware
			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Use(adminMW)
				adminHandler.RegisterRoutes(r)
			})
		})

		if cfg.Server.StaticDir != "" {
			registerStatic(r, cfg.Server.StaticDir)
			logger.Info("serving frontend", zap.String("dir", cfg.Server.StaticDir))
		}
	})

	return &App{
		Router: r,
		Tokens: tokenGenerator,
		Hasher: hasher,
	}, nil
}

// registerStatic serves index.html at / and the directory content under /static/
func registerStatic(r chi.Router, dir string) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(dir, "index.html"))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
}
