// Package tenantdb manages the pool of tenant-scoped data-access handles.
//
// A Handle is a pgx connection pool whose connections carry one tenant's
// row-level-security context, or an unscoped pool for super-admin access.
// The Cache maps (tenant, super) keys to live handles for the process
// lifetime, constructing each lazily exactly once even under concurrent
// first requests, and re-validating the tenant as active right before
// construction.
//
//	cache := tenantdb.NewCache(tenantdb.NewPoolFactory(pgCfg), directory)
//	defer cache.Close()
//
//	h, err := cache.Get(ctx, t.ID, tenant.IsSuperAdmin(ctx))
//	if err != nil { ... }
//	rows, err := h.Pool().Query(ctx, `SELECT ...`)
package tenantdb
