package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path {
		t.Errorf("expected path %s, got %s", path, resolved)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}

	// The written file must load back to the same values.
	again, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != cfg {
		t.Errorf("expected %+v, got %+v", cfg, again)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`addr: ":9090"
shutdown_timeout: 10s
database:
  driver: postgres
  dsn: postgres://localhost/social
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SOCIAL_ADDR", ":7070")
	t.Setenv("SOCIAL_LOG_LEVEL", "debug")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":7070" {
		t.Errorf("expected env to override addr, got %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout from file, got %v", cfg.ShutdownTimeout)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("expected default read header timeout, got %v", cfg.ReadHeaderTimeout)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "postgres://localhost/social" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", Database: Database{Path: "/tmp/x.db"}})

	if cfg.Addr != ":1234" || cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("expected overrides applied, got %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected untouched fields to keep defaults, got %+v", cfg)
	}
}
