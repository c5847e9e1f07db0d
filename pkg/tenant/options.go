package tenant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ErrorHandler writes the HTTP response for a resolution failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// IdentityResolver extracts the authenticated account ID from a request,
// typically from verified JWT claims placed in the context by the auth
// middleware. It returns false when the request is anonymous.
type IdentityResolver func(r *http.Request) (uuid.UUID, bool)

// config holds middleware configuration.
type config struct {
	baseDomain    string
	reserved      []string
	headerName    string
	queryParam    string
	claimKey      string
	headerEnabled bool
	queryEnabled  bool
	identity      IdentityResolver
	errorHandler  ErrorHandler
	skipPaths     []string
	logger        *slog.Logger
}

// Option configures the resolution middleware.
type Option func(*config)

// WithBaseDomain sets the platform base domain used by the subdomain and
// custom-domain strategies.
func WithBaseDomain(domain string) Option {
	return func(c *config) { c.baseDomain = domain }
}

// WithReservedSubdomains overrides the reserved-label set.
func WithReservedSubdomains(labels ...string) Option {
	return func(c *config) { c.reserved = labels }
}

// WithTenantHeader overrides the tenant-identifier header name.
func WithTenantHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithQueryParam overrides the tenant query-parameter name.
func WithQueryParam(param string) Option {
	return func(c *config) {
		if param != "" {
			c.queryParam = param
		}
	}
}

// WithClaimKey overrides the JWT claim holding the tenant slug.
func WithClaimKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.claimKey = key
		}
	}
}

// WithHeaderStrategy toggles the header strategy. Disable it in production;
// it exists for tooling and tests.
func WithHeaderStrategy(enabled bool) Option {
	return func(c *config) { c.headerEnabled = enabled }
}

// WithQueryStrategy toggles the query-parameter strategy. Disable it in
// production; it exists for development convenience.
func WithQueryStrategy(enabled bool) Option {
	return func(c *config) { c.queryEnabled = enabled }
}

// WithIdentityResolver sets the extractor for the authenticated account ID
// used for the super-admin directory lookup.
func WithIdentityResolver(fn IdentityResolver) Option {
	return func(c *config) {
		if fn != nil {
			c.identity = fn
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass resolution entirely.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) { c.skipPaths = paths }
}

// WithLogger sets a logger for resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// DefaultErrorHandler maps resolution errors to HTTP responses. Missing and
// inactive tenants both answer 401 so that probing cannot distinguish them.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantRequired), errors.Is(err, ErrTenantNotFound):
		http.Error(w, "tenant required", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, ErrSuperAdminRequired), errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
