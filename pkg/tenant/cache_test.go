package tenant_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showrunnerhq/showrunner/pkg/tenant"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	acme := &tenant.Tenant{ID: uuid.New(), Slug: "acme", Active: true}

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCache()
		defer c.Close()

		c.Set(ctx, "slug:acme", acme, time.Minute)

		got, ok := c.Get(ctx, "slug:acme")
		require.True(t, ok)
		assert.Equal(t, acme, got)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCache()
		defer c.Close()

		_, ok := c.Get(ctx, "slug:ghost")
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCache()
		defer c.Close()

		c.Set(ctx, "slug:acme", acme, 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)

		_, ok := c.Get(ctx, "slug:acme")
		assert.False(t, ok)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCache()
		defer c.Close()

		c.Set(ctx, "slug:acme", acme, time.Minute)
		c.Delete(ctx, "slug:acme")

		_, ok := c.Get(ctx, "slug:acme")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCacheWithSize(2)
		defer c.Close()

		c.Set(ctx, "a", acme, time.Minute)
		c.Set(ctx, "b", acme, time.Minute)

		// Touch "a" so "b" becomes the eviction candidate.
		_, ok := c.Get(ctx, "a")
		require.True(t, ok)

		c.Set(ctx, "c", acme, time.Minute)

		_, ok = c.Get(ctx, "a")
		assert.True(t, ok)
		_, ok = c.Get(ctx, "b")
		assert.False(t, ok)
		_, ok = c.Get(ctx, "c")
		assert.True(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCache()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		c := tenant.NewMemoryCacheWithSize(16)
		defer c.Close()

		done := make(chan struct{})
		for i := 0; i < 8; i++ {
			i := i
			go func() {
				defer func() { done <- struct{}{} }()
				key := fmt.Sprintf("slug:t%d", i)
				for n := 0; n < 100; n++ {
					c.Set(ctx, key, acme, time.Minute)
					c.Get(ctx, key)
					c.Delete(ctx, key)
				}
			}()
		}
		for n := 0; n < 8; n++ {
			<-done
		}
	})
}

func TestNoopCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := tenant.NewNoopCache()

	c.Set(ctx, "slug:acme", &tenant.Tenant{Slug: "acme"}, time.Minute)
	_, ok := c.Get(ctx, "slug:acme")
	assert.False(t, ok)
	require.NoError(t, c.Close())
}
