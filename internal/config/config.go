package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/Sandanitin/AJ-Mana-Style/pkg/config"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const defaultJWTSecret = "change-me-storefront-admin-secret"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Cart and wishlist persistence
	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`
	StoreTTL     int    `env:"STORE_TTL_HOURS" envDefault:"720"`
	StoreWatch   bool   `env:"STORE_WATCH" envDefault:"true"`

	// Live session containers held in memory
	MaxSessions        int `env:"MAX_SESSIONS" envDefault:"10000"`
	SessionIdleMinutes int `env:"SESSION_IDLE_MINUTES" envDefault:"30"`

	// Redis. REDIS_URL, when set, overrides the address, password and DB.
	RedisURL  string `env:"REDIS_URL"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Slow Redis command logging (0 disables)
	SlowCommandThresholdMs int `env:"LOG_SLOW_COMMAND_MS" envDefault:"100"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Storefront backend API
	BackendURL        string `env:"BACKEND_API_URL" envDefault:"http://localhost:8000/backend/api"`
	BackendTimeout    int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"10"`
	BackendMaxRetries int    `env:"BACKEND_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker settings for backend calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Admin authentication
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET" envDefault:"change-me-storefront-admin-secret"`

	// Rate limiting (0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Caching
	ShippingZoneCacheSeconds int `env:"SHIPPING_ZONE_CACHE_SECONDS" envDefault:"300"`
	ContentCacheSeconds      int `env:"CONTENT_CACHE_SECONDS" envDefault:"300"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StoreBackend != StoreMemory && c.StoreBackend != StoreRedis {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreRedis, c.StoreBackend)
	}
	if c.StoreBackend == StoreRedis && c.RedisAddr == "" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_ADDR or REDIS_URL is required when STORE_BACKEND is %q", StoreRedis)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("MAX_SESSIONS must be at least 1")
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be at least 1")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("invalid BACKEND_API_URL %q: %w", c.BackendURL, err)
	}
	if c.BackendMaxRetries < 0 {
		return fmt.Errorf("BACKEND_MAX_RETRIES must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.Environment != "development" && c.AdminJWTSecret == defaultJWTSecret {
		return fmt.Errorf("ADMIN_JWT_SECRET must be changed from default value in %s environment", c.Environment)
	}
	return nil
}

// StoreTTLDuration returns the key expiry applied by the Redis store.
func (c *Config) StoreTTLDuration() time.Duration {
	return time.Duration(c.StoreTTL) * time.Hour
}

// SessionIdleTTL returns how long an unused session container stays in memory.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// ShippingZoneCacheTTL returns how long fetched shipping zones are reused.
func (c *Config) ShippingZoneCacheTTL() time.Duration {
	return time.Duration(c.ShippingZoneCacheSeconds) * time.Second
}
