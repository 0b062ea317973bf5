package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by GESTOR_BACKEND.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Preference store names accepted by GESTOR_PREFS_BACKEND.
const (
	PrefsSQLite   = "sqlite"
	PrefsPostgres = "postgres"
	PrefsRedis    = "redis"
)

type Config struct {
	AppEnv     string
	ListenAddr string
	BaseURL    string

	Backend string

	Supabase struct {
		URL       string
		AnonKey   string
		JWTSecret string
	}

	Postgres struct {
		DSN string
	}

	Prefs struct {
		Backend string
		DSN     string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	SessionPersist  bool
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ProfileCacheTTL time.Duration
	RefreshInterval time.Duration
	RefreshLeeway   time.Duration
}

// RedirectURL is where magic links, OAuth and recovery emails send the browser back to.
func (c *Config) RedirectURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/auth/callback"
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AppEnv = getenvDefault("APP_ENV", "development")
	cfg.ListenAddr = getenvDefault("GESTOR_LISTEN_ADDR", "127.0.0.1:8787")
	cfg.BaseURL = getenvDefault("GESTOR_BASE_URL", "http://localhost:8787")
	cfg.Backend = strings.ToLower(getenvDefault("GESTOR_BACKEND", BackendSupabase))

	cfg.Supabase.URL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	cfg.Supabase.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	cfg.Supabase.JWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	cfg.Postgres.DSN = os.Getenv("GESTOR_PG_DSN")

	cfg.Prefs.Backend = strings.ToLower(getenvDefault("GESTOR_PREFS_BACKEND", PrefsSQLite))
	cfg.Prefs.DSN = getenvDefault("GESTOR_PREFS_DSN", "gestor.db")

	cfg.Redis.Host = getenvDefault("REDIS_HOST", "localhost")
	cfg.Redis.Port = getenvDefault("REDIS_PORT", "6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.SessionPersist = getenvBool("GESTOR_SESSION_PERSIST", true)
	cfg.AllowedOrigins = getenvList("GESTOR_ALLOWED_ORIGINS")
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	cfg.RateLimitRPS = getenvFloat("GESTOR_RATE_LIMIT_RPS", 10)
	cfg.RateLimitBurst = getenvInt("GESTOR_RATE_LIMIT_BURST", 20)
	cfg.ProfileCacheTTL = getenvDuration("GESTOR_PROFILE_CACHE_TTL", 10*time.Minute)
	cfg.RefreshInterval = getenvDuration("GESTOR_REFRESH_INTERVAL", 30*time.Second)
	cfg.RefreshLeeway = getenvDuration("GESTOR_REFRESH_LEEWAY", 2*time.Minute)

	switch cfg.Backend {
	case BackendSupabase:
		if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
	case BackendPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, errors.New("GESTOR_PG_DSN is required for the postgres backend")
		}
		if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
			return nil, errors.New("the postgres backend still signs in through SUPABASE_URL and SUPABASE_ANON_KEY")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown GESTOR_BACKEND %q", cfg.Backend)
	}

	switch cfg.Prefs.Backend {
	case PrefsSQLite, PrefsPostgres, PrefsRedis:
	default:
		return nil, fmt.Errorf("unknown GESTOR_PREFS_BACKEND %q", cfg.Prefs.Backend)
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("GESTOR_RATE_LIMIT_RPS must be positive (got %v)", cfg.RateLimitRPS)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
