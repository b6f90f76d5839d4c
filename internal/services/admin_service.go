package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/plcassist/backend/internal/auth/service"
	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps methods for user file data access used by admin operations
type AdminUserRepository interface {
	// Method Create inserts a new user.
	//
	// If a user with the same username in any letter case exists, models.ErrUserAlreadyExists will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetAll retrieves all users in insertion order.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method Update applies the optional changes of "update" to the user with "username".
	//
	// If user does not exist, models.ErrUserNotFound will be returned.
	Update(ctx context.Context, username string, update models.UserUpdate) error
	// Method Delete deletes a user by username.
	//
	// If user does not exist, models.ErrUserNotFound will be returned.
	Delete(ctx context.Context, username string) error
	// Method Backup returns the raw content of the user file.
	//
	// If the file does not exist, models.ErrBackupNotFound will be returned together with "nil" value.
	Backup(ctx context.Context) ([]byte, error)
}

// adminService implements AdminService
type adminService struct {
	userRepo AdminUserRepository
	hasher   *service.PasswordHasher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, hasher *service.PasswordHasher, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		hasher:   hasher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// CreateUser validates the request, hashes the password and stores the new user
func (s *adminService) CreateUser(ctx context.Context, req *models.CreateUserRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateStruct(req); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	user := &models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Disabled:     req.Disabled,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return nil
}

// GetUsersList returns all users without password hashes
func (s *adminService) GetUsersList(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	items := make([]models.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, users[i].ListItem())
	}
	return items, nil
}

// UpdateUser changes the password, role or disabled flag of a user
func (s *adminService) UpdateUser(ctx context.Context, username string, req *models.UpdateUserRequest) error {
	if err := s.validateStruct(req); err != nil {
		return err
	}

	if req.NewPassword != nil && *req.NewPassword != "" {
		// Reject passwords the hasher cannot handle before touching the store
		if _, err := s.hasher.Hash(*req.NewPassword); err != nil {
			return fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
	}

	update := models.UserUpdate{
		NewPassword: req.NewPassword,
		NewRole:     req.NewRole,
		Disabled:    req.Disabled,
	}
	if err := s.userRepo.Update(ctx, username, update); err != nil {
		return err
	}

	s.logger.Info("user updated", zap.String("username", username))
	return nil
}

// DeleteUser deletes a user. The primary admin account is protected.
func (s *adminService) DeleteUser(ctx context.Context, username string) error {
	if models.NormalizeUsername(username) == models.PrimaryAdminUsername {
		return models.ErrProtectedUser
	}

	if err := s.userRepo.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// BackupUsers returns the current user file content
func (s *adminService) BackupUsers(ctx context.Context) ([]byte, error) {
	return s.userRepo.Backup(ctx)
}

// validateStruct runs the validate tags and turns the first failure into a readable models.ErrValidation
func (s *adminService) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	fe := validationErrors[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", models.ErrValidation, field)
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", models.ErrValidation, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of: %s", models.ErrValidation, field, fe.Param())
	case "email":
		return fmt.Errorf("%w: %s is not a valid email address", models.ErrValidation, field)
	case "excludesall":
		return fmt.Errorf("%w: %s must not contain %q", models.ErrValidation, field, fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", models.ErrValidation, field)
	}
}
