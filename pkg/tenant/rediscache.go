package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache stores tenant snapshots in Redis so that directory lookups are
// shared across application instances. Entries are JSON-encoded and expire
// via Redis TTLs; a failed round-trip degrades to a cache miss.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed Cache. The client is owned by the
// caller; Close on the cache does not close it.
func NewRedisCache(client *redis.Client, keyPrefix string) Cache {
	if keyPrefix == "" {
		keyPrefix = "tenant:"
	}
	return &redisCache{client: client, prefix: keyPrefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		// Unreadable entries are dropped so the next lookup refreshes them.
		c.client.Del(ctx, c.prefix+key)
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	data, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, data, ttl)
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.prefix+key)
}

func (c *redisCache) Close() error { return nil }
