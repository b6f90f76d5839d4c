package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plcassist/backend/internal/auth/service"
	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for user file data access used by login
type UserRepository interface {
	// Method GetByUsername retrieves a user by username, ignoring letter case.
	//
	// If user with such username does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	hasher         *service.PasswordHasher
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	hasher *service.PasswordHasher,
	tokenGenerator *service.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Login checks the credentials and issues an access token with the configured expiry.
//
// Unknown users and wrong passwords produce the same models.ErrInvalidCredentials error.
// Disabled accounts can log in, their tokens are rejected by the auth middleware.
func (s *authService) Login(ctx context.Context, username, password string) (string, models.Role, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", "", models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("failed login attempt", zap.String("username", username))
		return "", "", models.ErrInvalidCredentials
	}

	// The token subject is the stored spelling of the username
	token, err := s.tokenGenerator.GenerateAccessToken(user.Username, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, user.Role, nil
}
