package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores directory lookup results for the request hot path.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a cached tenant by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant under key for the given TTL.
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)

	// Delete removes a cached tenant.
	Delete(ctx context.Context, key string)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

type cacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is the default in-process cache: TTL expiry with LRU eviction
// under size pressure, plus a background sweep for expired entries.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]cacheItem
	order   []string // oldest first
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryCache creates an in-memory cache with the default size limit.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize creates an in-memory cache holding at most maxSize
// entries.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memoryCache{
		items:   make(map[string]cacheItem),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		c.forget(key)
		return nil, false
	}
	c.touch(key)
	return item.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok && len(c.items) >= c.maxSize && len(c.order) > 0 {
		evict := c.order[0]
		c.order = c.order[1:]
		delete(c.items, evict)
	}
	c.items[key] = cacheItem{tenant: tenant, expiresAt: time.Now().Add(ttl)}
	c.touch(key)
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.forget(key)
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			c.forget(key)
		}
	}
}

// touch moves key to the most-recently-used position.
func (c *memoryCache) touch(key string) {
	c.forget(key)
	c.order = append(c.order, key)
}

func (c *memoryCache) forget(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// noopCache disables caching; useful in tests and when staleness is
// unacceptable.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() Cache { return &noopCache{} }

func (noopCache) Get(ctx context.Context, key string) (*Tenant, bool)                  { return nil, false }
func (noopCache) Set(ctx context.Context, key string, tenant *Tenant, _ time.Duration) {}
func (noopCache) Delete(ctx context.Context, key string)                               {}
func (noopCache) Close() error                                                         { return nil }
