package tenant

import "errors"

var (
	// ErrTenantRequired is returned when required resolution finds no usable
	// candidate and the caller is not a super admin.
	ErrTenantRequired = errors.New("tenant required")

	// ErrTenantNotFound is returned when a candidate does not resolve to an
	// active tenant. Inactive tenants are reported with this same error so
	// their existence is not leaked.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when a candidate fails format
	// validation before any directory lookup.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrSuperAdminRequired is returned by the guard when a route restricted
	// to super admins is invoked by an ordinary caller.
	ErrSuperAdminRequired = errors.New("super admin required")

	// ErrNoTenantInContext is returned when a handler requires a resolved
	// tenant but none was attached to the request context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
