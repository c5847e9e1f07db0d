package tenantdb

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handle is a data-access handle bound to exactly one tenant, or unscoped
// when opened in super mode. The binding happens at the connection level:
// every connection in the pool carries the tenant's row-level-security
// context, so a handle obtained for tenant A can never touch tenant B's
// rows.
type Handle struct {
	pool     *pgxpool.Pool
	tenantID uuid.UUID
	super    bool
}

// NewHandle wraps an already-configured pool. Exported for factory
// implementations and tests.
func NewHandle(pool *pgxpool.Pool, tenantID uuid.UUID, super bool) *Handle {
	return &Handle{pool: pool, tenantID: tenantID, super: super}
}

// Pool exposes the underlying connection pool for query execution.
func (h *Handle) Pool() *pgxpool.Pool { return h.pool }

// TenantID returns the bound tenant, or uuid.Nil for unscoped handles.
func (h *Handle) TenantID() uuid.UUID { return h.tenantID }

// Super reports whether the handle bypasses tenant scoping.
func (h *Handle) Super() bool { return h.super }

// Close releases the underlying pool. Called by the cache on flush and
// shutdown; handlers must never close a cached handle themselves.
func (h *Handle) Close() {
	if h.pool != nil {
		h.pool.Close()
	}
}
