package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig holds the remote service connection details
type ServerConfig struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig enables the shared error budget when Addr is set
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

// PaginationConfig controls page fetches
type PaginationConfig struct {
	PageSize     int           `mapstructure:"page_size"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig enables the /metrics listener when Addr is set
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}
