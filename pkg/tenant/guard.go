package tenant

import "net/http"

// RequireSuperAdmin gates a route on the super-admin flag set by the
// resolution middleware. It never re-derives the flag: the middleware is
// the single source of truth. Non-super-admin callers get an authorization
// error regardless of whether a tenant resolved.
func RequireSuperAdmin(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSuperAdmin(r.Context()) {
				errorHandler(w, r, ErrSuperAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant gates a route on a resolved tenant. Useful behind
// OptionalMiddleware for sub-routes that cannot serve the no-tenant state.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := TenantFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
