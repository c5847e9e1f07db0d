package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/showrunnerhq/showrunner/pkg/pg"
	"github.com/showrunnerhq/showrunner/pkg/tenant"
)

// Querier is the subset of pgxpool.Pool the directory needs; tests supply
// a stub.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Directory is the PostgreSQL-backed tenant.Directory. Every lookup filters
// on is_active in SQL, so a deactivated tenant is indistinguishable from a
// missing one at this boundary.
type Directory struct {
	db Querier
}

// New creates a Directory over the shared (unscoped) pool. Lookups run
// against the platform catalog, not tenant data, so no scoped handle is
// involved.
func New(db Querier) *Directory {
	return &Directory{db: db}
}

const tenantColumns = `id, slug, name, COALESCE(custom_domain, ''), plan_type, is_active, settings, created_at`

func (d *Directory) BySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return d.scanTenant(d.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1 AND is_active`, slug))
}

func (d *Directory) ByDomain(ctx context.Context, host string) (*tenant.Tenant, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	return d.scanTenant(d.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE custom_domain = $1 AND is_active`, host))
}

func (d *Directory) ByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return d.scanTenant(d.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1 AND is_active`, id))
}

// IsSuperAdmin reads the role flag off the caller's account. An unknown
// account is simply not a super admin, not an error.
func (d *Directory) IsSuperAdmin(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var isSuper bool
	err := d.db.QueryRow(ctx,
		`SELECT is_super_admin FROM accounts WHERE id = $1`, accountID).Scan(&isSuper)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return isSuper, nil
}

func (d *Directory) scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.CustomDomain, &t.PlanType, &t.Active, &t.Settings, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}
