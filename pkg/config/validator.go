package config

import (
	"fmt"
	"strings"
)

// validateCustom performs validation that struct tags cannot express.
func validateCustom(config *Config) error {
	if config.Provider.APIKey != "" && config.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is required when provider api_key is set")
	}
	if config.Provider.Timeout < 0 {
		return fmt.Errorf("provider timeout must not be negative")
	}
	if config.Monitoring.Enabled && !strings.HasPrefix(config.Monitoring.Path, "/") {
		return fmt.Errorf("monitoring path must start with '/': %q", config.Monitoring.Path)
	}
	if config.RateLimit.Enabled && (config.RateLimit.Limit <= 0 || config.RateLimit.Period <= 0) {
		return fmt.Errorf("rate_limit limit and period must be positive when enabled")
	}
	for _, app := range config.Apps.Supported {
		if strings.TrimSpace(app) == "" {
			return fmt.Errorf("apps.supported must not contain empty names")
		}
	}
	return nil
}

// RequireProvider reports the configuration a runtime client needs before any network call.
func (c *Config) RequireProvider() error {
	if c == nil {
		return fmt.Errorf("configuration is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is not configured (set PROVIDER_BASE_URL)")
	}
	if c.Provider.APIKey.Value() == "" {
		return fmt.Errorf("provider api_key is not configured (set PROVIDER_API_KEY)")
	}
	return nil
}
