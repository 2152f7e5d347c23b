package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Detail   DetailConfig
	Guard    GuardConfig
	Exports  ExportsConfig
	Prefetch PrefetchConfig
	Share    ShareConfig
	Session  SessionConfig
}

// UpstreamConfig points at the NgajiQu REST backend.
type UpstreamConfig struct {
	BaseURL  string
	AuthURL  string
	Timeout  time.Duration
	MaxRetry int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig governs how access-token claims are decoded for display and
// refresh heuristics. The upstream issues and verifies tokens; the gateway
// only inspects them.
type JWTConfig struct {
	AccessCookie  string
	RefreshCookie string
	CookieDomain  string
	CookieSecure  bool
	RefreshLeeway time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DetailConfig tunes the class-detail snapshot cache.
type DetailConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// GuardConfig defines the paths the cookie route guard redirects between.
type GuardConfig struct {
	LoginPath string
	AppRoot   string
}

// ExportsConfig controls kartu-history export generation.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// PrefetchConfig tunes the snapshot-refresh worker queue.
type PrefetchConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// ShareConfig controls guardian share links.
type ShareConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionConfig governs durable per-browser session storage.
type SessionConfig struct {
	Cookie string
	TTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL:  strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		AuthURL:  strings.TrimRight(v.GetString("UPSTREAM_AUTH_URL"), "/"),
		Timeout:  parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
		MaxRetry: v.GetInt("UPSTREAM_MAX_RETRY"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		AccessCookie:  v.GetString("ACCESS_TOKEN_COOKIE"),
		RefreshCookie: v.GetString("REFRESH_TOKEN_COOKIE"),
		CookieDomain:  v.GetString("COOKIE_DOMAIN"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		RefreshLeeway: parseDuration(v.GetString("REFRESH_LEEWAY"), time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Detail = DetailConfig{
		CacheEnabled: v.GetBool("ENABLE_DETAIL_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DETAIL_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Guard = GuardConfig{
		LoginPath: v.GetString("GUARD_LOGIN_PATH"),
		AppRoot:   v.GetString("GUARD_APP_ROOT"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Prefetch = PrefetchConfig{
		Workers:    v.GetInt("PREFETCH_WORKERS"),
		BufferSize: v.GetInt("PREFETCH_BUFFER_SIZE"),
		MaxRetries: v.GetInt("PREFETCH_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("PREFETCH_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Share = ShareConfig{
		Secret: v.GetString("SHARE_LINK_SECRET"),
		TTL:    parseDuration(v.GetString("SHARE_LINK_TTL"), 30*24*time.Hour),
	}

	cfg.Session = SessionConfig{
		Cookie: v.GetString("SESSION_COOKIE"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 30*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000")
	v.SetDefault("UPSTREAM_AUTH_URL", "http://localhost:8000")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")
	v.SetDefault("UPSTREAM_MAX_RETRY", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ngajiqu_gateway")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ACCESS_TOKEN_COOKIE", "accessToken")
	v.SetDefault("REFRESH_TOKEN_COOKIE", "refreshToken")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REFRESH_LEEWAY", "1m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DETAIL_CACHE", false)
	v.SetDefault("DETAIL_CACHE_TTL", "2m")

	v.SetDefault("GUARD_LOGIN_PATH", "/login")
	v.SetDefault("GUARD_APP_ROOT", "/kelasku")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("PREFETCH_WORKERS", 2)
	v.SetDefault("PREFETCH_BUFFER_SIZE", 16)
	v.SetDefault("PREFETCH_MAX_RETRIES", 2)
	v.SetDefault("PREFETCH_RETRY_DELAY", "5s")

	v.SetDefault("SHARE_LINK_SECRET", "dev_share_secret")
	v.SetDefault("SHARE_LINK_TTL", "720h")

	v.SetDefault("SESSION_COOKIE", "ngajiquSession")
	v.SetDefault("SESSION_TTL", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
