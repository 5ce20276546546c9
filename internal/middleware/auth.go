// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const jwtKey ctxKey = "jwt"

const bearerPrefix = "Bearer "

// BearerAuth is a middleware that enforces the Authorization header shape
// on protected endpoint groups.
//
// A missing or malformed header is rejected with 401 before any backend
// call is made; the same status is used on every protected group. On
// success the raw session token is stored in the request context for
// downstream handlers. The gateway never decodes the token, only forwards
// it to the auth backend.
func BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || header == bearerPrefix {
			http.Error(w, "Authorization header must be in format: Bearer <JWT>", http.StatusUnauthorized)
			return
		}
		jwt := header[len(bearerPrefix):]
		ctx := context.WithValue(r.Context(), jwtKey, jwt)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetJWTFromContext extracts the bearer session token stored by BearerAuth.
// Returns an empty string if not found.
func GetJWTFromContext(ctx context.Context) string {
	val := ctx.Value(jwtKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
