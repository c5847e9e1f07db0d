// Package directory implements tenant.Directory against the platform
// catalog tables (tenants, accounts) using pgx. It is the single authority
// on tenant existence, active status, and super-admin privilege; callers
// wanting hot-path caching wrap it with tenant.NewCachedDirectory.
package directory
