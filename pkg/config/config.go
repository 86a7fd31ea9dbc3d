package config

import (
	"context"
	"time"
)

// Config is the process configuration, built once at startup and passed down explicitly.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	Provider   ProviderConfig   `koanf:"provider"`
	Apps       AppsConfig       `koanf:"apps"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	Redis      RedisConfig      `koanf:"redis"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host    string        `koanf:"host"    validate:"required"        env:"SERVER_HOST"`
	Port    int           `koanf:"port"    validate:"min=1,max=65535" env:"SERVER_PORT"`
	Timeout time.Duration `koanf:"timeout"                            env:"SERVER_TIMEOUT"`
}

// RuntimeConfig contains process behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production"     env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled" env:"RUNTIME_LOG_LEVEL"`
}

// ProviderConfig points at the automation runtime that executes compiled workflows.
type ProviderConfig struct {
	BaseURL    string          `koanf:"base_url"    validate:"omitempty,url" env:"PROVIDER_BASE_URL"`
	APIKey     SensitiveString `koanf:"api_key"                              env:"PROVIDER_API_KEY"    sensitive:"true"`
	Timeout    time.Duration   `koanf:"timeout"                              env:"PROVIDER_TIMEOUT"`
	RetryCount int             `koanf:"retry_count" validate:"min=0,max=10"  env:"PROVIDER_RETRY_COUNT"`
}

// AppsConfig configures the supported-apps registry and the connection service.
type AppsConfig struct {
	Supported      []string        `koanf:"supported"       env:"APPS_SUPPORTED"`
	ConnectionsURL string          `koanf:"connections_url" env:"APPS_CONNECTIONS_URL" validate:"omitempty,url"`
	ConnectionsKey SensitiveString `koanf:"connections_key" env:"APPS_CONNECTIONS_KEY" sensitive:"true"`
	CacheTTL       time.Duration   `koanf:"cache_ttl"       env:"APPS_CACHE_TTL"`
	CacheSize      int             `koanf:"cache_size"      env:"APPS_CACHE_SIZE"      validate:"min=0"`
}

// MonitoringConfig toggles the Prometheus endpoint.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"MONITORING_PATH"`
}

// RedisConfig points at the Redis instance that backs the deployment registry and
// rate limiter. An empty URL keeps both in memory.
type RedisConfig struct {
	URL         string        `koanf:"url"          env:"REDIS_URL"          sensitive:"true"`
	KeyPrefix   string        `koanf:"key_prefix"   env:"REDIS_KEY_PREFIX"`
	PingTimeout time.Duration `koanf:"ping_timeout" env:"REDIS_PING_TIMEOUT"`
}

// RateLimitConfig limits API requests per client IP.
type RateLimitConfig struct {
	Enabled bool          `koanf:"enabled" env:"RATE_LIMIT_ENABLED"`
	Limit   int64         `koanf:"limit"   env:"RATE_LIMIT_LIMIT"   validate:"min=0"`
	Period  time.Duration `koanf:"period"  env:"RATE_LIMIT_PERIOD"`
}

// SensitiveString hides its value when printed or marshaled.
type SensitiveString string

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// Service loads and validates configuration.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5080,
			Timeout: 30 * time.Second,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Provider: ProviderConfig{
			BaseURL:    "http://localhost:5678",
			Timeout:    30 * time.Second,
			RetryCount: 0,
		},
		Apps: AppsConfig{
			Supported: []string{"email", "slack", "github", "google_sheets", "notion"},
			CacheTTL:  time.Minute,
			CacheSize: 1024,
		},
		Monitoring: MonitoringConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Redis: RedisConfig{
			KeyPrefix:   "autoflow:",
			PingTimeout: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			Limit:   100,
			Period:  time.Minute,
		},
	}
}
