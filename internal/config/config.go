// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is not set. It must be replaced in production.
const DefaultJWTSecret = "a_very_secret_key_that_should_be_changed"

// renderDataDir is the persistent disk mount of the hosting platform
const renderDataDir = "/data"

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	CORS    CORSConfig
	JWT     JWTConfig
	Storage StorageConfig
	// BcryptCost is the cost factor for new password hashes
	BcryptCost int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
	MaxRequestSize     int64
	StaticDir          string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	Algorithm         string
	AccessTokenExpiry time.Duration
}

// StorageConfig holds locations of the user file and the lookup catalog
type StorageConfig struct {
	UsersFile   string
	CatalogFile string
}

// UsesDefaultSecret reports whether the placeholder JWT secret is in use
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8002)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	rateLimit, err := intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute = rateLimit

	maxRequestSize, err := intEnv("MAX_REQUEST_SIZE", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestSize = int64(maxRequestSize)

	cfg.Server.StaticDir = os.Getenv("STATIC_DIR") // optional

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = DefaultJWTSecret
	}

	cfg.JWT.Algorithm = strings.ToUpper(strings.TrimSpace(os.Getenv("JWT_ALGORITHM")))
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}

	expiryMinutes, err := intEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if expiryMinutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: must be positive")
	}
	cfg.JWT.AccessTokenExpiry = time.Duration(expiryMinutes) * time.Minute

	bcryptCost, err := intEnv("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	cfg.BcryptCost = bcryptCost

	// Storage configuration
	cfg.Storage.UsersFile = os.Getenv("USERS_FILE")
	if cfg.Storage.UsersFile == "" {
		cfg.Storage.UsersFile = defaultUsersFile()
	}
	cfg.Storage.CatalogFile = os.Getenv("CATALOG_FILE") // optional, embedded catalog otherwise

	return cfg, nil
}

// intEnv reads an integer environment variable, falling back to def when it is unset
func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// parseOrigins parses comma-separated CORS origins
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// defaultUsersFile places users.json on the persistent disk if it is mounted
func defaultUsersFile() string {
	if info, err := os.Stat(renderDataDir); err == nil && info.IsDir() {
		return filepath.Join(renderDataDir, "users.json")
	}
	return "users.json"
}
