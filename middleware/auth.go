package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"canvascrafters/handlers/auth"
)

type contextKey string

// ClaimsContextKey holds the authenticated user's claims in the request
// context.
const ClaimsContextKey = contextKey("claims")

// AuthJWT requires a valid Bearer token and stores its claims in the
// context.
func AuthJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := parseAuthHeader(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Authorization header format must be Bearer {token}"})
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthJWT parses a Bearer token when present but lets anonymous
// requests through; public canvases are viewable without an account.
func OptionalAuthJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := parseAuthHeader(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user's subject, or "" for anonymous
// requests.
func UserID(r *http.Request) string {
	claims, ok := r.Context().Value(ClaimsContextKey).(*auth.AppClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}

func parseAuthHeader(r *http.Request) (*auth.AppClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}
	claims, err := auth.ParseJWT(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
