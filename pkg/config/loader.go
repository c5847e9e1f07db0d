package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	loaded = make(map[string]any)

	dotenvOnce sync.Once
)

// Load populates cfg from environment variables based on `env` struct tags.
// The first call loads a .env file if one exists; each distinct config type
// is parsed once per process and served from cache afterwards, so every
// component sees the same configuration.
//
//	type Config struct {
//		BaseDomain string `env:"BASE_DOMAIN,required"`
//		CacheTTL   time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"30s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// A missing .env file is fine; real environments set vars directly.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	mu.RLock()
	if cached, ok := loaded[key]; ok {
		*cfg = cached.(T)
		mu.RUnlock()
		return nil
	}
	mu.RUnlock()

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	// First writer wins so concurrent loaders observe one value.
	if cached, ok := loaded[key]; ok {
		*cfg = cached.(T)
	} else {
		loaded[key] = *cfg
	}
	mu.Unlock()
	return nil
}

// MustLoad is Load that panics on failure, for configuration the process
// cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
