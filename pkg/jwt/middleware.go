package jwt

import (
	"net/http"
	"strings"
)

// SkipFunc decides whether a request bypasses token validation.
type SkipFunc func(r *http.Request) bool

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header per RFC 6750.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrInvalidToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// Middleware verifies the bearer token and injects its claims into the
// request context. Requests without a token pass through anonymously;
// requests with an invalid token are rejected so a bad credential never
// masquerades as an anonymous caller.
func Middleware(service *Service, skip SkipFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := BearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			var claims StandardClaims
			if err := service.Parse(tokenString, &claims); err != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}

			ctx := SetToken(r.Context(), tokenString)
			ctx = SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
