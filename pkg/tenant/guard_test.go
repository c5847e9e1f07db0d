package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/showrunnerhq/showrunner/pkg/tenant"
)

func TestRequireSuperAdmin(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := tenant.RequireSuperAdmin(nil)(next)

	serve := func(tc *tenant.Context) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "https://showrunner.app/admin", nil)
		if tc != nil {
			req = req.WithContext(tenant.WithContext(req.Context(), tc))
		}
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		return rec
	}

	t.Run("admits super admin", func(t *testing.T) {
		t.Parallel()
		rec := serve(&tenant.Context{IsSuperAdmin: true})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects tenant member even with a resolved tenant", func(t *testing.T) {
		t.Parallel()
		rec := serve(&tenant.Context{Tenant: &tenant.Tenant{ID: uuid.New(), Slug: "acme"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects unresolved request", func(t *testing.T) {
		t.Parallel()
		rec := serve(nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := tenant.RequireTenant(nil)(next)

	t.Run("admits resolved tenant", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		tc := &tenant.Context{Tenant: &tenant.Tenant{ID: uuid.New(), Slug: "acme"}}
		req = req.WithContext(tenant.WithContext(req.Context(), tc))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects cross-tenant super admin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "https://showrunner.app/", nil)
		req = req.WithContext(tenant.WithContext(req.Context(), &tenant.Context{IsSuperAdmin: true}))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
