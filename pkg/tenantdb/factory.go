package tenantdb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/showrunnerhq/showrunner/pkg/pg"
)

// Per-tenant pools stay small: one platform instance serves many tenants,
// and the aggregate connection count must not exhaust the database.
const (
	tenantPoolMaxConns       = 4
	tenantPoolMinConns       = 0
	tenantPoolMaxConnIdle    = 10 * time.Minute
	tenantPoolMaxConnLife    = 30 * time.Minute
	tenantPoolHealthInterval = time.Minute
)

// Factory opens a scoped handle for the given key. tenantID is uuid.Nil
// for cross-tenant super-admin handles. Implementations must respect ctx
// cancellation and must not leave partially-opened resources behind on
// error.
type Factory func(ctx context.Context, tenantID uuid.UUID, super bool) (*Handle, error)

// NewPoolFactory returns a Factory that opens a small pgx pool per key.
// Tenant-scoped pools set the app.tenant_id runtime parameter on every
// connection, which the row-level-security policies read via
// current_setting('app.tenant_id'). Super-mode pools omit the parameter and
// rely on the connecting role's RLS bypass.
func NewPoolFactory(cfg pg.Config) Factory {
	return func(ctx context.Context, tenantID uuid.UUID, super bool) (*Handle, error) {
		poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
		if err != nil {
			return nil, errors.Join(ErrOpenHandle, err)
		}
		poolCfg.MaxConns = tenantPoolMaxConns
		poolCfg.MinConns = tenantPoolMinConns
		poolCfg.MaxConnIdleTime = tenantPoolMaxConnIdle
		poolCfg.MaxConnLifetime = tenantPoolMaxConnLife
		poolCfg.HealthCheckPeriod = tenantPoolHealthInterval

		if !super {
			poolCfg.ConnConfig.RuntimeParams["app.tenant_id"] = tenantID.String()
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, errors.Join(ErrOpenHandle, err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, errors.Join(ErrOpenHandle, err)
		}

		return NewHandle(pool, tenantID, super), nil
	}
}
