package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showrunnerhq/showrunner/pkg/config"
)

func TestLoad(t *testing.T) {
	// t.Setenv forbids t.Parallel; each subtest uses its own config type
	// because Load caches per type for the process lifetime.

	t.Run("parses env into struct", func(t *testing.T) {
		type testConfig struct {
			BaseDomain string `env:"TEST_LOAD_BASE_DOMAIN"`
			Port       int    `env:"TEST_LOAD_PORT" envDefault:"8080"`
		}
		t.Setenv("TEST_LOAD_BASE_DOMAIN", "showrunner.app")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "showrunner.app", cfg.BaseDomain)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedConfig struct {
			Value string `env:"TEST_CACHED_VALUE"`
		}
		t.Setenv("TEST_CACHED_VALUE", "first")

		var first cachedConfig
		require.NoError(t, config.Load(&first))

		// Later loads see the cached value even if the env changed.
		t.Setenv("TEST_CACHED_VALUE", "second")
		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Value)
	})

	t.Run("reports missing required vars", func(t *testing.T) {
		type requiredConfig struct {
			Key string `env:"TEST_REQUIRED_KEY,required"`
		}

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		var cfg *struct{}
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("must load panics on failure", func(t *testing.T) {
		type panicConfig struct {
			Key string `env:"TEST_PANIC_KEY,required"`
		}

		assert.Panics(t, func() {
			var cfg panicConfig
			config.MustLoad(&cfg)
		})
	})
}
