package middleware

import (
	"net/http"

	"github.com/plcassist/backend/internal/models"
)

// RoleMiddleware checks that the user stored in context by AuthMiddleware has the required role.
// The role of the stored record is used, so role changes apply to tokens issued before them.
func RoleMiddleware(requiredRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				unauthorized(w, `{"error":"authentication required"}`)
				return
			}

			if user.Role != requiredRole {
				writeError(w, http.StatusForbidden, `{"error":"insufficient permissions"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
