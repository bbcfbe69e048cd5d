package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 30*24*time.Hour {
		t.Errorf("token ttl = %s, want 720h", cfg.Auth.TokenTTL)
	}
	if cfg.Server.Store != StorePostgres {
		t.Errorf("store = %q, want postgres", cfg.Server.Store)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error without JWT secret")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
  store: memory
auth:
  jwt_secret: from-file
  token_ttl: 48h
database:
  host: db.internal
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DB_HOST", "db.override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Store != StoreMemory {
		t.Errorf("store = %q, want memory", cfg.Server.Store)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("secret = %q, want from-file", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 48*time.Hour {
		t.Errorf("token ttl = %s, want 48h", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Host != "db.override" {
		t.Errorf("db host = %q, want env override", cfg.Database.Host)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store", func(c *Config) { c.Server.Store = "sqlite" }},
		{"storage", func(c *Config) { c.Storage.Backend = "s3" }},
		{"mq", func(c *Config) { c.MQ.Backend = "kafka" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.JWTSecret = "secret"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_A", "yes")
	t.Setenv("FLAG_B", "0")
	t.Setenv("FLAG_C", "maybe")

	if !getEnvBool("FLAG_A", false) {
		t.Error("FLAG_A should be true")
	}
	if getEnvBool("FLAG_B", true) {
		t.Error("FLAG_B should be false")
	}
	if !getEnvBool("FLAG_C", true) {
		t.Error("FLAG_C should fall back to default")
	}
}
