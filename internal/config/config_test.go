package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("want port 8080 got %q", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpireMinutes != 15 || cfg.JWT.RefreshExpireDays != 7 {
		t.Fatalf("want 15m/7d token lifetimes got %d/%d", cfg.JWT.AccessExpireMinutes, cfg.JWT.RefreshExpireDays)
	}
	if cfg.Email.VerificationExpireHours != 24 {
		t.Fatalf("want 24h verification window got %d", cfg.Email.VerificationExpireHours)
	}
	if cfg.Order.TxTimeoutSeconds != 10 {
		t.Fatalf("want 10s order timeout got %d", cfg.Order.TxTimeoutSeconds)
	}
	if cfg.Security.PasswordPolicy.MinLength != 6 {
		t.Fatalf("want min password length 6 got %d", cfg.Security.PasswordPolicy.MinLength)
	}
	if cfg.Queue.Queues["critical"] != 5 {
		t.Fatalf("want critical queue weight 5 got %v", cfg.Queue.Queues)
	}
	if cfg.Upload.MaxSize != 5<<20 || cfg.Upload.Dir != "uploads" {
		t.Fatalf("want 5MB uploads under uploads/ got %d %q", cfg.Upload.MaxSize, cfg.Upload.Dir)
	}
	if len(cfg.Upload.AllowedTypes) == 0 || len(cfg.Upload.AllowedExtensions) == 0 {
		t.Fatalf("want default upload allow-lists got %+v", cfg.Upload)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("want metrics on /metrics got %+v", cfg.Metrics)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_ACCESS_EXPIRE_MINUTES", "5")

	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("want port 9090 got %q", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpireMinutes != 5 {
		t.Fatalf("want 5 minute access tokens got %d", cfg.JWT.AccessExpireMinutes)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  mode: release\ndatabase:\n  driver: postgres\n  dsn: host=db user=app\nredis:\n  prefix: shop\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := load(viper.New(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Mode != "release" {
		t.Fatalf("want release mode got %q", cfg.Server.Mode)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=app" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Redis.Prefix != "shop" {
		t.Fatalf("want prefix shop got %q", cfg.Redis.Prefix)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("want default port kept got %q", cfg.Server.Port)
	}
}

func TestToLoggerOptions(t *testing.T) {
	opts := LogConfig{Dir: "/var/log/app", Filename: "api.log", MaxSizeMB: 50, Compress: true}.ToLoggerOptions()
	if opts.Dir != "/var/log/app" || opts.Filename != "api.log" || opts.MaxSizeMB != 50 || !opts.Compress {
		t.Fatalf("unexpected logger options: %+v", opts)
	}
}
