package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Login checks user credentials and returns a signed access token with the user role.
	//
	// If credentials are wrong or the user does not exist, models.ErrInvalidCredentials will be returned together with empty values.
	Login(ctx context.Context, username, password string) (string, models.Role, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

// Login handles POST /api/login
// @Summary Login user
// @Description Authenticate with username and password sent as form fields. Returns a bearer access token and the user role.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// FormValue parses both urlencoded and multipart bodies
	username := r.FormValue("username")
	password := r.FormValue("password")

	token, role, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.Logger.Error("failed to login user", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        role,
	})
}
