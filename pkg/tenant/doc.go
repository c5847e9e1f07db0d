// Package tenant resolves which organization an HTTP request belongs to and
// carries the result through the request context.
//
// Every inbound request passes through the resolution middleware, which runs
// five extraction strategies in fixed precedence order:
//
//  1. Subdomain of the platform base domain ({slug}.showrunner.app)
//  2. Custom domain mapped to a tenant
//  3. Explicit tenant header (tooling and tests)
//  4. Tenant claim inside the bearer token, decoded without verification
//  5. Query parameter (development convenience)
//
// The first strategy that yields a candidate wins; a candidate that fails
// its directory lookup does not fall through to weaker signals. Domain-level
// signals outrank the credential claim because they come from routing
// infrastructure, while header and query signals rank last and should be
// disabled in production.
//
// # Resolution modes
//
// Middleware enforces required resolution: requests without an active
// tenant are rejected, except super admins with no tenant signal, who
// proceed in cross-tenant mode. OptionalMiddleware never rejects and
// degrades to a no-tenant context, for public endpoints and health checks.
//
//	dir := tenant.NewCachedDirectory(pgDirectory, tenant.NewMemoryCache(), 30*time.Second)
//
//	r.Use(tenant.Middleware(dir,
//		tenant.WithBaseDomain("showrunner.app"),
//		tenant.WithIdentityResolver(identityFromClaims),
//		tenant.WithQueryStrategy(false),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustTenantFromContext(r.Context())
//		...
//	}
//
// # Directory
//
// The Directory interface is the single authority on tenant existence and
// the caller's super-admin privilege. Implementations report inactive
// tenants as ErrTenantNotFound so deactivation is indistinguishable from
// absence. NewCachedDirectory adds the short-TTL hot-path cache; backends
// are pluggable via the Cache interface (in-memory or Redis).
package tenant
