package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Path: "data/stacklens.db"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database path")
	}
	expected := "database.path is required"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Path: "data/stacklens.db"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("cache.ttl_sec default = %d, want 300", cfg.Cache.TTLSec)
	}
	if cfg.Cache.HistoryLimit != 50 {
		t.Errorf("cache.history_limit default = %d, want 50", cfg.Cache.HistoryLimit)
	}
	if cfg.Search.TextLimit != 100 {
		t.Errorf("search.text_limit default = %d, want 100", cfg.Search.TextLimit)
	}
	if cfg.Parser.Model == "" {
		t.Error("parser.model default must be set")
	}
}

func TestCacheEnabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("empty cache config must be disabled")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("cache config with addrs must be enabled")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
http:
  port: 8080
database:
  path: ${STACKLENS_DB_PATH}
parser:
  api_key: ${STACKLENS_PARSER_KEY:-}
logging:
  level: ${STACKLENS_LOG_LEVEL:-warn}
`)
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
	t.Setenv("STACKLENS_DB_PATH", "/tmp/stacklens.db")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/stacklens.db" {
		t.Errorf("database.path = %q, want env expansion", cfg.Database.Path)
	}
	if cfg.Parser.APIKey != "" {
		t.Errorf("parser.api_key = %q, want empty via default", cfg.Parser.APIKey)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want fallback default", cfg.Logging.Level)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
