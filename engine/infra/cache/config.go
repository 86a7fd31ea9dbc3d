package cache

import (
	"time"

	"github.com/compozy/autoflow/pkg/config"
)

const defaultKeyPrefix = "autoflow:"

type Config struct {
	URL         string
	KeyPrefix   string
	PingTimeout time.Duration
}

// FromAppConfig creates a cache Config from the centralized app configuration.
func FromAppConfig(cfg config.RedisConfig) *Config {
	return &Config{URL: cfg.URL, KeyPrefix: cfg.KeyPrefix, PingTimeout: cfg.PingTimeout}
}

func (c *Config) prefix() string {
	if c == nil || c.KeyPrefix == "" {
		return defaultKeyPrefix
	}
	return c.KeyPrefix
}
