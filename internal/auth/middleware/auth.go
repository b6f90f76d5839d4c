package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/plcassist/backend/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	// Method ValidateToken checks signature and expiry of the token.
	//
	// Returns the username and role the token was issued for, or an error wrapping models.ErrInvalidToken.
	ValidateToken(token string) (string, models.Role, error)
}

// UserResolver resolves token subjects to stored users
type UserResolver interface {
	// Method GetByUsername retrieves a user by username, case-insensitively.
	//
	// If user does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware validates the bearer token, resolves it to a stored user and rejects disabled accounts.
// Tokens of deleted users are rejected even if they have not expired yet.
func AuthMiddleware(tokens TokenValidator, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				unauthorized(w, `{"error":"authentication required"}`)
				return
			}

			username, _, err := tokens.ValidateToken(token)
			if err != nil {
				unauthorized(w, `{"error":"invalid or expired token"}`)
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				if errors.Is(err, models.ErrUserNotFound) {
					unauthorized(w, `{"error":"invalid or expired token"}`)
					return
				}
				writeError(w, http.StatusInternalServerError, `{"error":"internal server error"}`)
				return
			}

			if user.Disabled {
				writeError(w, http.StatusBadRequest, `{"error":"inactive user"}`)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// extractToken reads the token from the Authorization header, falling back to the access_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, body string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, body)
}

func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
