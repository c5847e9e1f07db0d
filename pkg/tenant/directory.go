package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultDirectoryTTL keeps directory entries fresh enough that a
// deactivated tenant stops resolving within tens of seconds.
const DefaultDirectoryTTL = 30 * time.Second

// CachedDirectory decorates a Directory with a short-TTL cache for the
// request hot path. Only positive lookups are cached: a missing or inactive
// tenant is re-checked on every request, and a deactivation becomes visible
// as soon as its cache entry expires. IsSuperAdmin is never cached because
// privilege changes must take effect immediately.
type CachedDirectory struct {
	dir   Directory
	cache Cache
	ttl   time.Duration
}

// NewCachedDirectory wraps dir with the given cache. A nil cache falls back
// to the in-memory implementation; a non-positive ttl falls back to
// DefaultDirectoryTTL.
func NewCachedDirectory(dir Directory, cache Cache, ttl time.Duration) *CachedDirectory {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	return &CachedDirectory{dir: dir, cache: cache, ttl: ttl}
}

func (d *CachedDirectory) BySlug(ctx context.Context, slug string) (*Tenant, error) {
	return d.lookup(ctx, "slug:"+slug, func() (*Tenant, error) {
		return d.dir.BySlug(ctx, slug)
	})
}

func (d *CachedDirectory) ByDomain(ctx context.Context, host string) (*Tenant, error) {
	return d.lookup(ctx, "domain:"+host, func() (*Tenant, error) {
		return d.dir.ByDomain(ctx, host)
	})
}

func (d *CachedDirectory) ByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return d.lookup(ctx, "id:"+id.String(), func() (*Tenant, error) {
		return d.dir.ByID(ctx, id)
	})
}

func (d *CachedDirectory) IsSuperAdmin(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return d.dir.IsSuperAdmin(ctx, accountID)
}

// Invalidate drops all cached keys for a tenant. Admin surfaces call it
// after deactivating a tenant so resolution stops before the TTL elapses.
func (d *CachedDirectory) Invalidate(ctx context.Context, t *Tenant) {
	if t == nil {
		return
	}
	d.cache.Delete(ctx, "slug:"+t.Slug)
	d.cache.Delete(ctx, "id:"+t.ID.String())
	if t.CustomDomain != "" {
		d.cache.Delete(ctx, "domain:"+t.CustomDomain)
	}
}

// Close releases the underlying cache.
func (d *CachedDirectory) Close() error { return d.cache.Close() }

func (d *CachedDirectory) lookup(ctx context.Context, key string, load func() (*Tenant, error)) (*Tenant, error) {
	if t, ok := d.cache.Get(ctx, key); ok {
		return t, nil
	}
	t, err := load()
	if err != nil {
		return nil, err
	}
	d.cache.Set(ctx, key, t, d.ttl)
	return t, nil
}
