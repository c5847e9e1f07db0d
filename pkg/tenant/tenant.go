package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant is the snapshot of an organization record that request handling
// needs: identity, routing fields, and the active flag. Settings is an
// opaque blob owned by the provisioning and admin surfaces; this package
// never interprets it.
type Tenant struct {
	ID           uuid.UUID       `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	CustomDomain string          `json:"custom_domain,omitempty"`
	PlanType     string          `json:"plan_type"`
	Active       bool            `json:"active"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Directory resolves candidate identifiers to canonical tenant records.
//
// Implementations must treat inactive tenants exactly like missing ones and
// return ErrTenantNotFound for both, so that callers cannot distinguish a
// deactivated tenant from one that never existed.
type Directory interface {
	// BySlug looks up a tenant by its URL-safe short name.
	BySlug(ctx context.Context, slug string) (*Tenant, error)

	// ByDomain looks up a tenant by its verified custom domain.
	ByDomain(ctx context.Context, host string) (*Tenant, error)

	// ByID looks up a tenant by its stable identifier.
	ByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// IsSuperAdmin reports whether the authenticated account has
	// cross-tenant privileges. The lookup is keyed off the caller's
	// account, never off any tenant signal.
	IsSuperAdmin(ctx context.Context, accountID uuid.UUID) (bool, error)
}
