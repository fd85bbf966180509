package controllers

import (
	"context"
	"net/http"
	"strings"

	"satex_server/services"
)

type contextKey string

const userIDKey contextKey = "userId"

// RequireAuth validates the Bearer token and stores the caller's user id
// in the request context for downstream handlers.
func RequireAuth(auth *services.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, `{"error": "Missing or malformed Authorization header"}`, http.StatusUnauthorized)
			return
		}
		userID, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated caller from the request context.
func UserID(r *http.Request) string {
	if id, ok := r.Context().Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
