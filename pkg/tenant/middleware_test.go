package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showrunnerhq/showrunner/pkg/tenant"
)

// fakeDirectory is an in-memory Directory honoring the contract: inactive
// tenants are reported as not found.
type fakeDirectory struct {
	tenants []*tenant.Tenant
	supers  map[uuid.UUID]bool

	slugLookups atomic.Int64
}

func (d *fakeDirectory) BySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	d.slugLookups.Add(1)
	for _, t := range d.tenants {
		if t.Slug == slug && t.Active {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) ByDomain(ctx context.Context, host string) (*tenant.Tenant, error) {
	for _, t := range d.tenants {
		if t.CustomDomain == host && t.Active {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) ByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	for _, t := range d.tenants {
		if t.ID == id && t.Active {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) IsSuperAdmin(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return d.supers[accountID], nil
}

var (
	acmeID  = uuid.New()
	betaID  = uuid.New()
	adminID = uuid.New()
)

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		tenants: []*tenant.Tenant{
			{ID: acmeID, Slug: "acme", Name: "Acme Gala", Active: true},
			{ID: betaID, Slug: "beta", Name: "Beta Events", CustomDomain: "gala.beta.com", Active: true},
			{ID: uuid.New(), Slug: "dormant", Name: "Dormant Org", Active: false},
		},
		supers: map[uuid.UUID]bool{adminID: true},
	}
}

// identityFromHeader lets tests assert super-admin behavior without a full
// auth stack.
func identityFromHeader(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-Account-ID"))
	return id, err == nil
}

func baseOpts(extra ...tenant.Option) []tenant.Option {
	return append([]tenant.Option{
		tenant.WithBaseDomain("showrunner.app"),
		tenant.WithIdentityResolver(identityFromHeader),
	}, extra...)
}

// capture records the resolution context seen by the downstream handler.
func capture(tc **tenant.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ := tenant.FromContext(r.Context())
		*tc = got
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("resolves subdomain to tenant", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/api/context", nil)
		req.Host = "acme.showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, acmeID, tc.Tenant.ID)
		assert.False(t, tc.IsSuperAdmin)
	})

	t.Run("subdomain outranks header", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "acme.showrunner.app"
		req.Header.Set("X-Tenant-ID", "beta")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "acme", tc.Tenant.Slug)
	})

	t.Run("bare base domain falls through to header", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		req.Header.Set("X-Tenant-ID", "beta")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "beta", tc.Tenant.Slug)
	})

	t.Run("reserved subdomain falls through to header", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "www.showrunner.app"
		req.Header.Set("X-Tenant-ID", "beta")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "beta", tc.Tenant.Slug)
	})

	t.Run("resolves custom domain", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://example.com/", nil)
		req.Host = "gala.beta.com"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, betaID, tc.Tenant.ID)
	})

	t.Run("failed lookup does not fall through to weaker signals", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		h := tenant.Middleware(dir, baseOpts()...)(capture(new(*tenant.Context)))

		// Subdomain yields "ghost"; the valid header candidate below it
		// must never be consulted.
		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "ghost.showrunner.app"
		req.Header.Set("X-Tenant-ID", "beta")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, int64(1), dir.slugLookups.Load())
	})

	t.Run("inactive tenant is indistinguishable from missing", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		h := tenant.Middleware(dir, baseOpts()...)(capture(new(*tenant.Context)))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "dormant.showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("zero signals rejects ordinary caller", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		h := tenant.Middleware(dir, baseOpts()...)(capture(new(*tenant.Context)))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("zero signals admits super admin in cross-tenant mode", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		req.Header.Set("X-Account-ID", adminID.String())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc)
		assert.Nil(t, tc.Tenant)
		assert.True(t, tc.IsSuperAdmin)
	})

	t.Run("super admin impersonates resolved tenant", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "acme.showrunner.app"
		req.Header.Set("X-Account-ID", adminID.String())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "acme", tc.Tenant.Slug)
		assert.True(t, tc.IsSuperAdmin)
	})

	t.Run("invalid identifier answers bad request", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		h := tenant.Middleware(dir, baseOpts()...)(capture(new(*tenant.Context)))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		req.Header.Set("X-Tenant-ID", "not a slug!")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled header strategy ignores the header", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts(tenant.WithHeaderStrategy(false))...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/?tenant=acme", nil)
		req.Host = "showrunner.app"
		req.Header.Set("X-Tenant-ID", "beta")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "acme", tc.Tenant.Slug)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.Middleware(dir, baseOpts(tenant.WithSkipPaths("/health"))...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/health", nil)
		req.Host = "showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, tc)
	})
}

func TestOptionalMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("zero signals degrades to no-tenant state", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.OptionalMiddleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc)
		assert.Nil(t, tc.Tenant)
		assert.False(t, tc.IsSuperAdmin)
	})

	t.Run("failed lookup degrades instead of rejecting", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.OptionalMiddleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "ghost.showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc)
		assert.Nil(t, tc.Tenant)
	})

	t.Run("still resolves when a signal matches", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		var tc *tenant.Context
		h := tenant.OptionalMiddleware(dir, baseOpts()...)(capture(&tc))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "acme.showrunner.app"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, tc.Tenant)
		assert.Equal(t, "acme", tc.Tenant.Slug)
	})

	t.Run("invalid identifier still propagates", func(t *testing.T) {
		t.Parallel()

		dir := newFakeDirectory()
		h := tenant.OptionalMiddleware(dir, baseOpts()...)(capture(new(*tenant.Context)))

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req.Host = "showrunner.app"
		req.Header.Set("X-Tenant-ID", "bad value!")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
