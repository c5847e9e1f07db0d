package tenantdb

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/showrunnerhq/showrunner/pkg/tenant"
)

// Cache holds one live Handle per (tenant, super) key for the process
// lifetime. Construction is expensive (it opens a connection pool), so
// concurrent first requests for the same key are collapsed through
// singleflight: exactly one construction runs, later callers wait and
// receive the same handle. Failed constructions are never cached.
type Cache struct {
	factory Factory
	dir     tenant.Directory

	group   singleflight.Group
	mu      sync.RWMutex
	handles map[string]*Handle
	closed  bool
}

// NewCache creates a handle cache. dir must be an UNCACHED directory: it is
// consulted immediately before each construction to confirm the tenant is
// still active, closing the race between directory-cache staleness and
// handle creation.
func NewCache(factory Factory, dir tenant.Directory) *Cache {
	return &Cache{
		factory: factory,
		dir:     dir,
		handles: make(map[string]*Handle),
	}
}

func handleKey(tenantID uuid.UUID, super bool) string {
	key := "tenant:" + tenantID.String()
	if super {
		key += ":super"
	}
	return key
}

// Get returns the live handle for the key, constructing it on first use.
// tenantID is uuid.Nil for cross-tenant super-admin access; super with a
// non-nil tenant is the impersonation case and gets its own key. A caller
// whose context is cancelled while waiting receives ctx.Err(); the shared
// construction still completes and is cached, so nothing leaks.
func (c *Cache) Get(ctx context.Context, tenantID uuid.UUID, super bool) (*Handle, error) {
	if tenantID == uuid.Nil && !super {
		return nil, tenant.ErrTenantNotFound
	}

	key := handleKey(tenantID, super)

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrCacheClosed
	}
	if h, ok := c.handles[key]; ok {
		c.mu.RUnlock()
		return h, nil
	}
	c.mu.RUnlock()

	// Construction is detached from the caller's context: if the first
	// caller gives up, waiters still get the handle and it lands in the
	// cache instead of leaking.
	buildCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		// Re-check under the singleflight barrier.
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return nil, ErrCacheClosed
		}
		if h, ok := c.handles[key]; ok {
			c.mu.RUnlock()
			return h, nil
		}
		c.mu.RUnlock()

		// A tenant must be confirmed active in the same pass that
		// constructs its handle; a stale directory cache must not be
		// able to revive a deactivated tenant here.
		if tenantID != uuid.Nil {
			if _, err := c.dir.ByID(buildCtx, tenantID); err != nil {
				return nil, err
			}
		}

		h, err := c.factory(buildCtx, tenantID, super)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			h.Close()
			return nil, ErrCacheClosed
		}
		c.handles[key] = h
		c.mu.Unlock()
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// Forget so the next request retries construction instead
			// of replaying a poisoned result.
			c.group.Forget(key)
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	}
}

// Flush closes and drops every cached handle. Admin-triggered; subsequent
// requests reconstruct handles on demand.
func (c *Cache) Flush() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[string]*Handle)
	c.mu.Unlock()

	for key, h := range handles {
		c.group.Forget(key)
		h.Close()
	}
}

// Len reports the number of live handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Close disposes all handles and rejects further Get calls. Safe for
// repeated calls.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	handles := c.handles
	c.handles = make(map[string]*Handle)
	c.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
	return nil
}
