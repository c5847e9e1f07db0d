package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context is the per-request resolution result attached by the middleware.
// Tenant is nil for cross-tenant super-admin requests and for optional
// resolution that found no signal. It is never persisted.
type Context struct {
	Tenant       *Tenant
	IsSuperAdmin bool
}

// contextKey prevents collisions with other packages using context values.
type contextKey struct{}

// WithContext attaches the resolution result to the request context.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the resolution result. The second return value is
// false when the request never passed through the resolution middleware.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok
}

// TenantFromContext retrieves the resolved tenant, if any.
func TenantFromContext(ctx context.Context) (*Tenant, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc.Tenant == nil {
		return nil, false
	}
	return tc.Tenant, true
}

// IDFromContext provides fast access to the tenant ID without exposing the
// full tenant snapshot.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := TenantFromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// IsSuperAdmin reports the flag set by the resolution middleware. Handlers
// must read it from here rather than re-deriving it.
func IsSuperAdmin(ctx context.Context) bool {
	tc, ok := FromContext(ctx)
	return ok && tc.IsSuperAdmin
}

// MustTenantFromContext panics if no tenant is attached. Use only in
// handlers mounted behind required resolution.
func MustTenantFromContext(ctx context.Context) *Tenant {
	t, ok := TenantFromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a function that enriches log records with the
// resolved tenant ID when one is present.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
