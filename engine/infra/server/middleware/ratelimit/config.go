package ratelimit

import (
	"fmt"
	"time"

	"github.com/compozy/autoflow/pkg/config"
	"github.com/ulule/limiter/v3"
)

type Config struct {
	Limit         int64
	Period        time.Duration
	Prefix        string
	ExcludedPaths []string
}

func DefaultConfig() *Config {
	return &Config{
		Limit:         100,
		Period:        time.Minute,
		Prefix:        "autoflow:ratelimit:",
		ExcludedPaths: []string{"/healthz", "/metrics"},
	}
}

// FromAppConfig derives the limiter settings from the application config.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	out.Limit = cfg.RateLimit.Limit
	out.Period = cfg.RateLimit.Period
	if cfg.Redis.KeyPrefix != "" {
		out.Prefix = cfg.Redis.KeyPrefix + "ratelimit:"
	}
	if cfg.Monitoring.Path != "" {
		out.ExcludedPaths = append(out.ExcludedPaths, cfg.Monitoring.Path)
	}
	return out
}

func (c *Config) Rate() limiter.Rate {
	return limiter.Rate{Period: c.Period, Limit: c.Limit}
}

func (c *Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Period <= 0 {
		return fmt.Errorf("rate limit period must be positive")
	}
	return nil
}
