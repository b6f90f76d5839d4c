package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from the .env file or environment variables
// If TEST_* variables are not set, safe defaults are used so tests can run without any setup.
// Storage paths are left empty and have to be set by the test (usually to t.TempDir()).
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")

	cfg := &Config{
		BcryptCost: 4, // bcrypt.MinCost keeps tests fast
	}
	cfg.Server.RateLimitPerMinute = 1000
	cfg.Server.MaxRequestSize = 1 << 20
	cfg.Logging.Level = "debug"
	cfg.CORS.AllowedOrigins = []string{"*"}

	cfg.JWT.Secret = os.Getenv("TEST_JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "test-secret-b8a3c2267dc85f855dea9b46b452bf20"
	}

	cfg.JWT.Algorithm = os.Getenv("TEST_JWT_ALGORITHM")
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}

	// Access token expiry (default: 30 minutes)
	expiryStr := os.Getenv("TEST_JWT_ACCESS_TOKEN_EXPIRY")
	if expiryStr == "" {
		expiryStr = "30m"
	}
	expiry, err := time.ParseDuration(expiryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = expiry

	return cfg, nil
}
