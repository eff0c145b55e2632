package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tweeter.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.URL != "http://localhost:8080" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Pagination.PageSize != 10 {
		t.Errorf("Pagination.PageSize = %d, want 10", cfg.Pagination.PageSize)
	}
	if cfg.Pagination.FetchTimeout != 15*time.Second {
		t.Errorf("Pagination.FetchTimeout = %v, want 15s", cfg.Pagination.FetchTimeout)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty", cfg.Redis.Addr)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" || !cfg.Logging.Color {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  url: http://tweeter.example:9000
  timeout: 5s
redis:
  addr: localhost:6379
  db: 2
pagination:
  page_size: 25
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.URL != "http://tweeter.example:9000" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 5*time.Second {
		t.Errorf("Server.Timeout = %v, want 5s", cfg.Server.Timeout)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Pagination.PageSize != 25 {
		t.Errorf("Pagination.PageSize = %d, want 25", cfg.Pagination.PageSize)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Server.UserAgent != "tweeter-client/0.1.0" {
		t.Errorf("unset keys should keep defaults, Server.UserAgent = %q", cfg.Server.UserAgent)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err == nil {
		t.Fatal("Load() with a missing explicit file should fail")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "pagination:\n  page_size: 25\n")
	t.Setenv("TWEETER_PAGINATION_PAGE_SIZE", "7")
	t.Setenv("TWEETER_SERVER_URL", "http://env.example")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Pagination.PageSize != 7 {
		t.Errorf("Pagination.PageSize = %d, want 7", cfg.Pagination.PageSize)
	}
	if cfg.Server.URL != "http://env.example" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TWEETER_PAGINATION_PAGE_SIZE", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("page-size", 10, "")
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--page-size=3"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Pagination.PageSize != 3 {
		t.Errorf("Pagination.PageSize = %d, want 3", cfg.Pagination.PageSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unchanged flag should not override, Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{URL: "http://localhost:8080", UserAgent: "ua", Timeout: time.Second},
			Pagination: PaginationConfig{PageSize: 10},
			Logging:    LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty url", func(c *Config) { c.Server.URL = "" }, "server.url"},
		{"empty user agent", func(c *Config) { c.Server.UserAgent = "" }, "server.user_agent"},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, "server.timeout"},
		{"zero page size", func(c *Config) { c.Pagination.PageSize = 0 }, "pagination.page_size"},
		{"negative fetch timeout", func(c *Config) { c.Pagination.FetchTimeout = -time.Second }, "pagination.fetch_timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
