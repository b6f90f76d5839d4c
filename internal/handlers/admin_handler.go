package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/plcassist/backend/internal/auth/middleware"
	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for admin operations
type AdminService interface {
	// Method CreateUser validates the request and stores a new user with a hashed password.
	//
	// If validation fails, an error wrapping models.ErrValidation will be returned.
	// If the username is taken in any letter case, models.ErrUserAlreadyExists will be returned.
	CreateUser(ctx context.Context, req *models.CreateUserRequest) error
	// Method GetUsersList gets all users without password hashes in insertion order.
	//
	// If some error occurs, the error will be returned together with nil.
	GetUsersList(ctx context.Context) ([]models.UserListItem, error)
	// Method UpdateUser changes password, role or disabled flag of a user.
	//
	// If user not found, models.ErrUserNotFound will be returned.
	UpdateUser(ctx context.Context, username string, req *models.UpdateUserRequest) error
	// Method DeleteUser deletes a user by username.
	//
	// The primary admin cannot be deleted, models.ErrProtectedUser will be returned.
	// If user not found, models.ErrUserNotFound will be returned.
	DeleteUser(ctx context.Context, username string) error
	// Method BackupUsers returns the raw user file.
	//
	// If the file does not exist yet, models.ErrBackupNotFound will be returned together with nil.
	BackupUsers(ctx context.Context) ([]byte, error)
}

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers all admin handler routes
// Note: This assumes the router is already scoped to /api and guarded by auth and admin role middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/check", h.Check)
		r.Get("/users", h.GetUsersList)
		r.Post("/users", h.CreateUser)
		r.Put("/users/{username}", h.UpdateUser)
		r.Delete("/users/{username}", h.DeleteUser)
		r.Get("/backup/users", h.BackupUsers)
	})
}

// Check handles GET /api/admin/check
// @Summary Check admin access
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/check [get]
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	username := ""
	if user, ok := authMiddleware.GetUser(r.Context()); ok {
		username = user.Username
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{
		"message":  "admin access granted",
		"username": username,
	})
}

// GetUsersList handles GET /api/admin/users
// @Summary Get users list
// @Description List all users in creation order, password hashes are never included
// @Tags admin
// @Produce json
// @Success 200 {array} models.UserListItem
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (h *AdminHandler) GetUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.GetUsersList(r.Context())
	if err != nil {
		h.Logger.Error("failed to get users list", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get users list")
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /api/admin/users
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "New user"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid request or username already registered"
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.CreateUser(r.Context(), &req); err != nil {
		h.respondServiceError(w, err, "failed to create user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]string{"message": "user " + req.Username + " created"})
}

// UpdateUser handles PUT /api/admin/users/{username}
// @Summary Update user
// @Description Change password, role or disabled flag. Omitted fields stay unchanged, an empty password is ignored.
// @Tags admin
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param request body models.UpdateUserRequest true "Changes"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/users/{username} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.UpdateUser(r.Context(), username, &req); err != nil {
		h.respondServiceError(w, err, "failed to update user")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user " + username + " updated"})
}

// DeleteUser handles DELETE /api/admin/users/{username}
// @Summary Delete user
// @Description Delete a user. The primary admin account cannot be deleted.
// @Tags admin
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Primary admin account"
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/users/{username} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.adminService.DeleteUser(r.Context(), username); err != nil {
		h.respondServiceError(w, err, "failed to delete user")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user " + username + " deleted"})
}

// BackupUsers handles GET /api/admin/backup/users
// @Summary Download user file backup
// @Tags admin
// @Produce json
// @Success 200 {file} file
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /admin/backup/users [get]
func (h *AdminHandler) BackupUsers(w http.ResponseWriter, r *http.Request) {
	data, err := h.adminService.BackupUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to read user file")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=users_backup.json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write backup", zap.Error(err))
	}
}

// respondServiceError maps admin service errors to HTTP status codes
func (h *AdminHandler) respondServiceError(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case errors.Is(err, models.ErrUserNotFound), errors.Is(err, models.ErrBackupNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUserAlreadyExists),
		errors.Is(err, models.ErrProtectedUser),
		errors.Is(err, models.ErrValidation):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error(internalMessage, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, internalMessage)
	}
}
