package app

import (
	"context"
	"fmt"
	"net/http"

	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/config"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/db"
	"gestor-pelada/gestor/internal/db/repositories"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/selection"
	"gestor-pelada/gestor/internal/session"

	"github.com/coreos/go-oidc/v3/oidc"
)

const clientNamespace = "default"

// Build assembles an App from configuration. The returned func releases the
// connections it opened.
func Build(ctx context.Context, cfg *config.Config, metricsReg *metrics.MetricsRegistry, entryURL string) (*App, func(), error) {
	var closers []func()
	checks := make(map[string]HealthCheck)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// The session store is created inside New, so the providers read the
	// token through this indirection.
	var a *App
	tokens := func() string {
		if a == nil {
			return ""
		}
		return a.Sessions.AccessToken()
	}

	authProvider, dataProvider, err := buildBackend(ctx, cfg, tokens, metricsReg, &closers, checks)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	prefs, persister, cache, err := buildClientStore(cfg, metricsReg, &closers, checks)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	a = New(Options{
		Auth:            authProvider,
		Data:            dataProvider,
		Preferences:     prefs,
		Persister:       persister,
		Cache:           cache,
		Metrics:         metricsReg,
		EntryURL:        entryURL,
		RedirectURL:     cfg.RedirectURL(),
		ProfileCacheTTL: cfg.ProfileCacheTTL,
		RefreshInterval: cfg.RefreshInterval,
		RefreshLeeway:   cfg.RefreshLeeway,
	})
	for name, check := range checks {
		a.Checks[name] = check
	}
	return a, cleanup, nil
}

func buildBackend(ctx context.Context, cfg *config.Config, tokens providers.TokenSource, metricsReg *metrics.MetricsRegistry, closers *[]func(), checks map[string]HealthCheck) (providers.AuthProvider, providers.DataProvider, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logging.Info("Using in-memory backend")
		memory := providers.NewMemoryProvider(tokens)
		return memory, memory, nil

	case config.BackendSupabase:
		supabase := providers.NewSupabaseProvider(cfg.Supabase.URL, cfg.Supabase.AnonKey, tokens, cfg.RateLimitRPS, cfg.RateLimitBurst, metricsReg)
		logging.Info("Using Supabase backend", "url", cfg.Supabase.URL)
		return supabase, supabase, nil

	case config.BackendPostgres:
		supabase := providers.NewSupabaseProvider(cfg.Supabase.URL, cfg.Supabase.AnonKey, tokens, cfg.RateLimitRPS, cfg.RateLimitBurst, metricsReg)
		sqlDB, err := db.ConnectPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, func() { sqlDB.Close() })
		checks["postgres"] = sqlDB.PingContext

		var verifier providers.TokenVerifier
		if cfg.Supabase.JWTSecret != "" {
			verifier = providers.NewHMACTokenVerifier([]byte(cfg.Supabase.JWTSecret))
		} else {
			verifier = providers.NewJWKSTokenVerifier(oidcContext(ctx), cfg.Supabase.URL)
		}
		logging.Info("Using Postgres backend with Supabase auth")
		return supabase, providers.NewPostgresProvider(sqlDB, tokens, verifier, metricsReg), nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// oidcContext carries the HTTP client used to fetch the signing keys.
func oidcContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, &http.Client{Timeout: constants.DefaultHTTPTimeout})
}

// buildClientStore opens the local state store. A nil cache leaves the
// in-process cache in place.
func buildClientStore(cfg *config.Config, metricsReg *metrics.MetricsRegistry, closers *[]func(), checks map[string]HealthCheck) (selection.PreferenceStore, session.Persister, common.CacheInterface, error) {
	switch cfg.Prefs.Backend {
	case config.PrefsRedis:
		client := common.NewRedisClient(cfg)
		*closers = append(*closers, func() { client.Close() })
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		var persister session.Persister
		if cfg.SessionPersist {
			persister = common.NewSessionService(client, clientNamespace)
		}
		cache := common.NewRedisCacheService(client, clientNamespace, metricsReg)
		return common.NewRedisPreferenceService(client, clientNamespace), persister, cache, nil

	case config.PrefsSQLite, config.PrefsPostgres:
		store, err := db.OpenClientStore(cfg.Prefs.Backend, cfg.Prefs.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if sqlDB, err := store.DB(); err == nil {
			*closers = append(*closers, func() { sqlDB.Close() })
			checks["client_store"] = sqlDB.PingContext
		}

		var persister session.Persister
		if cfg.SessionPersist {
			persister = repositories.NewSessionRepositoryGORM(store, clientNamespace)
		}
		return repositories.NewPreferenceRepositoryGORM(store, clientNamespace), persister, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown preference backend %q", cfg.Prefs.Backend)
}
