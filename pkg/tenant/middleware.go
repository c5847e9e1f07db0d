package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// lookupFunc maps a candidate to the directory index it resolves against.
type lookupFunc func(ctx context.Context, dir Directory, candidate string) (*Tenant, error)

func bySlug(ctx context.Context, dir Directory, candidate string) (*Tenant, error) {
	return dir.BySlug(ctx, candidate)
}

func byDomain(ctx context.Context, dir Directory, candidate string) (*Tenant, error) {
	return dir.ByDomain(ctx, candidate)
}

// source pairs an extraction strategy with its directory index.
type source struct {
	resolve Resolver
	lookup  lookupFunc
}

// Middleware returns required tenant resolution: every request must resolve
// to an active tenant, except super admins with no tenant signal at all,
// who proceed in cross-tenant mode.
//
// Strategies run in fixed precedence order: subdomain, custom domain,
// header, credential claim, query parameter. The first non-empty candidate
// is the only one consulted; a candidate that fails its directory lookup
// does not fall through to lower-precedence strategies.
func Middleware(dir Directory, opts ...Option) func(http.Handler) http.Handler {
	return newMiddleware(dir, true, opts...)
}

// OptionalMiddleware applies the same precedence logic but never rejects on
// a missing or unresolvable tenant; such requests proceed with a no-tenant
// context. Errors other than not-found still propagate.
func OptionalMiddleware(dir Directory, opts ...Option) func(http.Handler) http.Handler {
	return newMiddleware(dir, false, opts...)
}

func newMiddleware(dir Directory, required bool, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		headerName:    DefaultTenantHeader,
		queryParam:    DefaultQueryParam,
		claimKey:      DefaultClaimKey,
		headerEnabled: true,
		queryEnabled:  true,
		identity:      func(*http.Request) (uuid.UUID, bool) { return uuid.UUID{}, false },
		errorHandler:  DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	chain := []source{
		{NewSubdomainResolver(cfg.baseDomain, cfg.reserved...), bySlug},
		{NewDomainResolver(cfg.baseDomain), byDomain},
	}
	if cfg.headerEnabled {
		chain = append(chain, source{NewHeaderResolver(cfg.headerName), bySlug})
	}
	chain = append(chain, source{NewClaimResolver(cfg.claimKey), bySlug})
	if cfg.queryEnabled {
		chain = append(chain, source{NewQueryResolver(cfg.queryParam), bySlug})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			var (
				candidate string
				lookup    lookupFunc
			)
			for _, s := range chain {
				value, err := s.resolve(r)
				if err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
				if value != "" {
					candidate, lookup = value, s.lookup
					break
				}
			}

			// The super-admin flag comes from the caller's account,
			// independent of any tenant signal.
			isSuper := false
			if accountID, ok := cfg.identity(r); ok {
				var err error
				isSuper, err = dir.IsSuperAdmin(r.Context(), accountID)
				if err != nil {
					cfg.logError(r, "super admin lookup failed", err)
					cfg.errorHandler(w, r, err)
					return
				}
			}

			if candidate == "" {
				if !isSuper && required {
					cfg.errorHandler(w, r, ErrTenantRequired)
					return
				}
				// Cross-tenant mode for super admins, or the
				// documented no-tenant state for optional routes.
				ctx := WithContext(r.Context(), &Context{IsSuperAdmin: isSuper})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ten, err := lookup(r.Context(), dir, candidate)
			if err != nil {
				if !required && errors.Is(err, ErrTenantNotFound) {
					ctx := WithContext(r.Context(), &Context{IsSuperAdmin: isSuper})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				cfg.logError(r, "tenant lookup failed", err)
				cfg.errorHandler(w, r, err)
				return
			}

			ctx := WithContext(r.Context(), &Context{Tenant: ten, IsSuperAdmin: isSuper})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (c *config) logError(r *http.Request, msg string, err error) {
	if c.logger == nil || errors.Is(err, ErrTenantNotFound) {
		return
	}
	c.logger.ErrorContext(r.Context(), msg, "error", err, "host", r.Host, "path", r.URL.Path)
}
