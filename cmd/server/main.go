package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/showrunnerhq/showrunner/pkg/config"
	"github.com/showrunnerhq/showrunner/pkg/environment"
	"github.com/showrunnerhq/showrunner/pkg/httpserver"
	"github.com/showrunnerhq/showrunner/pkg/jwt"
	"github.com/showrunnerhq/showrunner/pkg/logger"
	"github.com/showrunnerhq/showrunner/pkg/pg"
	"github.com/showrunnerhq/showrunner/pkg/redis"
	"github.com/showrunnerhq/showrunner/pkg/tenant"
	"github.com/showrunnerhq/showrunner/pkg/tenantdb"
	"github.com/showrunnerhq/showrunner/svc/directory"
)

const serviceName = "showrunner"

type appConfig struct {
	Env               string        `env:"APP_ENV" envDefault:"development"`
	BaseDomain        string        `env:"BASE_DOMAIN" envDefault:"showrunner.app"`
	TenantHeader      string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	TenantQueryParam  string        `env:"TENANT_QUERY_PARAM" envDefault:"tenant"`
	TenantClaimKey    string        `env:"TENANT_CLAIM_KEY" envDefault:"tenant_slug"`
	DirectoryCacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"30s"`
	DirectoryRedis    bool          `env:"DIRECTORY_CACHE_REDIS" envDefault:"false"`
	JWTSigningKey     string        `env:"JWT_SIGNING_KEY,required"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		appCfg   appConfig
		pgCfg    pg.Config
		redisCfg redis.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)

	env := environment.Parse(appCfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, serviceName),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(ctx, log, env, appCfg, pgCfg, redisCfg, httpCfg); err != nil {
		log.ErrorContext(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	log *slog.Logger,
	env environment.Environment,
	appCfg appConfig,
	pgCfg pg.Config,
	redisCfg redis.Config,
	httpCfg httpserver.Config,
) error {
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	// The directory cache is in-process by default; Redis shares it across
	// instances so a deactivation propagates everywhere within one TTL.
	var dirCache tenant.Cache
	if appCfg.DirectoryRedis {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		dirCache = tenant.NewRedisCache(redisClient, "showrunner:tenant:")
		probes = append(probes, redis.Healthcheck(redisClient))
	} else {
		dirCache = tenant.NewMemoryCache()
	}

	dir := directory.New(pool)
	cachedDir := tenant.NewCachedDirectory(dir, dirCache, appCfg.DirectoryCacheTTL)
	defer cachedDir.Close()

	// Handle construction re-validates active status through the raw
	// directory, never the cached one.
	handles := tenantdb.NewCache(tenantdb.NewPoolFactory(pgCfg), dir)
	defer handles.Close()

	jwtSvc, err := jwt.NewFromString(appCfg.JWTSigningKey)
	if err != nil {
		return err
	}

	resolutionOpts := []tenant.Option{
		tenant.WithBaseDomain(appCfg.BaseDomain),
		tenant.WithTenantHeader(appCfg.TenantHeader),
		tenant.WithQueryParam(appCfg.TenantQueryParam),
		tenant.WithClaimKey(appCfg.TenantClaimKey),
		tenant.WithIdentityResolver(identityFromClaims),
		tenant.WithLogger(log),
		// Header and query strategies exist for tooling and local
		// development; production trusts routing and credentials only.
		tenant.WithHeaderStrategy(!env.IsProduction()),
		tenant.WithQueryStrategy(!env.IsProduction()),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(jwt.Middleware(jwtSvc, nil))

	r.Get("/health", httpserver.HealthCheck(probes...))

	r.Route("/api", func(api chi.Router) {
		// Public surface: reachable without a resolved tenant.
		api.Group(func(pub chi.Router) {
			pub.Use(tenant.OptionalMiddleware(cachedDir, resolutionOpts...))
			pub.Get("/tenants/{slug}", lookupTenant(cachedDir))
		})

		// Tenant-scoped surface.
		api.Group(func(scoped chi.Router) {
			scoped.Use(tenant.Middleware(cachedDir, resolutionOpts...))
			scoped.Get("/context", currentContext(handles))
		})
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(tenant.OptionalMiddleware(cachedDir, resolutionOpts...))
		admin.Use(tenant.RequireSuperAdmin(nil))
		admin.Post("/cache/flush", flushHandles(handles, log))
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// identityFromClaims extracts the authenticated account ID from the
// verified claims placed in the context by the JWT middleware.
func identityFromClaims(r *http.Request) (uuid.UUID, bool) {
	claims, ok := jwt.GetClaims[jwt.StandardClaims](r.Context())
	if !ok || claims.Subject == "" {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// lookupTenant serves the public tenant lookup used by login screens to
// route users to their organization. Only display fields leave the server.
func lookupTenant(dir tenant.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := dir.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			http.Error(w, "tenant not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"slug":      t.Slug,
			"name":      t.Name,
			"plan_type": t.PlanType,
		})
	}
}

// currentContext echoes the resolved request context and checks out the
// scoped data-access handle the way business handlers do.
func currentContext(handles *tenantdb.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.FromContext(r.Context())
		if !ok {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		var tenantID uuid.UUID
		if tc.Tenant != nil {
			tenantID = tc.Tenant.ID
		}
		h, err := handles.Get(r.Context(), tenantID, tc.IsSuperAdmin)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := map[string]any{
			"super_admin":   tc.IsSuperAdmin,
			"handle_scoped": !h.Super(),
		}
		if tc.Tenant != nil {
			resp["tenant_id"] = tc.Tenant.ID
			resp["tenant_slug"] = tc.Tenant.Slug
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// flushHandles drops every cached scoped handle; the next request per
// tenant reconstructs one against current catalog state.
func flushHandles(handles *tenantdb.Cache, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := handles.Len()
		handles.Flush()
		log.InfoContext(r.Context(), "scoped handle cache flushed", "handles", n)
		respondJSON(w, http.StatusOK, map[string]int{"flushed": n})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
