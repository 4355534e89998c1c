package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Gamma   GammaConfig   `mapstructure:"gamma"`
	Query   QueryConfig   `mapstructure:"query"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GammaConfig holds Polymarket Gamma API configuration
type GammaConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// QueryConfig holds result-shaping defaults
type QueryConfig struct {
	DefaultLimit     int `mapstructure:"default_limit"`
	SearchFetchLimit int `mapstructure:"search_fetch_limit"`
	MaxOutcomes      int `mapstructure:"max_outcomes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path, or a missing file at the default location, falls back to
// defaults: the tool works with no configuration at all.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("POLYSCOUT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("gamma.api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "30s")
	v.SetDefault("gamma.max_retries", 3)
	v.SetDefault("gamma.retry_delay_base", "1s")

	v.SetDefault("query.default_limit", 5)
	v.SetDefault("query.search_fetch_limit", 200)
	v.SetDefault("query.max_outcomes", 10)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Gamma.APIURL == "" {
		return fmt.Errorf("gamma.api_url is required")
	}
	if c.Gamma.Timeout < time.Second {
		return fmt.Errorf("gamma.timeout must be at least 1 second")
	}
	if c.Gamma.MaxRetries < 1 {
		return fmt.Errorf("gamma.max_retries must be at least 1")
	}
	if c.Gamma.RetryDelayBase <= 0 {
		return fmt.Errorf("gamma.retry_delay_base must be positive")
	}

	if c.Query.DefaultLimit < 1 {
		return fmt.Errorf("query.default_limit must be at least 1")
	}
	if c.Query.SearchFetchLimit < 1 || c.Query.SearchFetchLimit > 1000 {
		return fmt.Errorf("query.search_fetch_limit must be between 1 and 1000")
	}
	if c.Query.MaxOutcomes < 1 {
		return fmt.Errorf("query.max_outcomes must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
