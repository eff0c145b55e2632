// Package config loads tweeter configuration from a YAML file, TWEETER_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TWEETER_SERVER_URL.
const EnvPrefix = "TWEETER"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"server":        "server.url",
	"user-agent":    "server.user_agent",
	"timeout":       "server.timeout",
	"redis":         "redis.addr",
	"redis-db":      "redis.db",
	"page-size":     "pagination.page_size",
	"fetch-timeout": "pagination.fetch_timeout",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"color":         "logging.color",
	"metrics-addr":  "metrics.addr",
}

// Load loads the configuration. An empty configPath searches the standard
// locations and tolerates a missing file. Flags present in flags override
// file and environment values.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tweeter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tweeter"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.user_agent", "tweeter-client/0.1.0")
	v.SetDefault("server.timeout", 30*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("pagination.page_size", 10)
	v.SetDefault("pagination.fetch_timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("metrics.addr", "")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}

	if cfg.Server.UserAgent == "" {
		return fmt.Errorf("server.user_agent is required")
	}

	if cfg.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", cfg.Server.Timeout)
	}

	if cfg.Pagination.PageSize <= 0 {
		return fmt.Errorf("pagination.page_size must be positive, got %d", cfg.Pagination.PageSize)
	}

	if cfg.Pagination.FetchTimeout < 0 {
		return fmt.Errorf("pagination.fetch_timeout must not be negative, got %s", cfg.Pagination.FetchTimeout)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s", cfg.Logging.Format)
	}

	return nil
}
