package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "postgres")
	}
	if cfg.CronSpec != "@every 1m" {
		t.Errorf("CronSpec = %q, want %q", cfg.CronSpec, "@every 1m")
	}
	if cfg.BatchWorkers != 4 {
		t.Errorf("BatchWorkers = %d, want 4", cfg.BatchWorkers)
	}
	if cfg.NotificationsEnabled() {
		t.Error("NotificationsEnabled() should be false without SMTP settings")
	}
}

func TestNewConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
port: "9090"
db_driver: sqlite
db_conn: /tmp/recurring.db
cache_ttl: 30s
batch_workers: 8
smtp_host: smtp.example.com
notify_email: ops@example.com
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want env override 7070", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBConn != "/tmp/recurring.db" {
		t.Errorf("DB = %s %s, want sqlite /tmp/recurring.db", cfg.DBDriver, cfg.DBConn)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.BatchWorkers != 8 {
		t.Errorf("BatchWorkers = %d, want 8", cfg.BatchWorkers)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", cfg.RateLimitRPS)
	}
	if !cfg.NotificationsEnabled() {
		t.Error("NotificationsEnabled() should be true")
	}
}

func TestNewConfig_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CACHE_TTL", "soon"},
		{"BATCH_WORKERS", "many"},
		{"BATCH_WORKERS", "0"},
		{"JWT_SECRET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := NewConfig(); err == nil {
				t.Errorf("NewConfig() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
