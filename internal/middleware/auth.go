package middleware

import (
	"context"
	"net/http"
	"strings"

	"lms/internal/auth"
	"lms/internal/logger"
)

// Injected key type to avoid context collisions
type contextKey string

const (
	UserContextKey = contextKey("user")
	RoleContextKey = contextKey("role")
)

// UserID extracts the authenticated user id from the request context.
func UserID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(UserContextKey).(int64)
	return id, ok
}

// Role extracts the authenticated role from the request context.
func Role(r *http.Request) string {
	role, _ := r.Context().Value(RoleContextKey).(string)
	return role
}

// AuthMiddleware validates the bearer token and injects the user id and role
// into the request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.New()
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				log.Error().Msgf("Invalid token: %+v", err)
				http.Error(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims.UserID())
			ctx = context.WithValue(ctx, RoleContextKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
