package jwt

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

var (
	tokenContextKey  = &contextKey{name: "jwt"}
	claimsContextKey = &contextKey{name: "jwt_claims"}
)

// SetToken stores the raw token string in the context.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetToken returns the raw token string from the context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// SetClaims stores parsed claims in the context.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims returns the claims from the context as type T.
func GetClaims[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsContextKey).(T)
	if !ok {
		var zero T
		return zero, false
	}
	return claims, true
}
