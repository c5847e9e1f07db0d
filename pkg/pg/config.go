package pg

import "time"

// Config controls the shared PostgreSQL pool and schema migrations. Fields
// are populated from environment variables via pkg/config.
type Config struct {
	ConnectionString  string        `env:"DATABASE_URL,required"`
	MaxOpenConns      int32         `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"DATABASE_MIGRATIONS_PATH" envDefault:"internal/db/migrations"`
	MigrationsTable string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
