package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("store backend: got %q", cfg.StoreBackend)
	}
	if cfg.RequiredVersion != "0.62.0" || cfg.RecommendedVersion != "0.64.0" {
		t.Errorf("versions: got %q / %q", cfg.RequiredVersion, cfg.RecommendedVersion)
	}
	if cfg.CasSettleDelay != 3*time.Second {
		t.Errorf("cas delay: got %v", cfg.CasSettleDelay)
	}
	if cfg.ConnectivityProbeTimeout != 1500*time.Millisecond {
		t.Errorf("probe timeout: got %v", cfg.ConnectivityProbeTimeout)
	}
	if cfg.CallbackPort != 8765 {
		t.Errorf("callback port: got %d", cfg.CallbackPort)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CHAT_SERVER_URL", "https://chat.example.com")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/chat")
	t.Setenv("CAS_SETTLE_DELAY", "250ms")
	t.Setenv("CALLBACK_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://chat.example.com" || cfg.StoreBackend != StorePostgres {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.CasSettleDelay != 250*time.Millisecond {
		t.Errorf("cas delay: got %v", cfg.CasSettleDelay)
	}
	if len(cfg.CallbackOrigins) != 2 || cfg.CallbackOrigins[1] != "https://b.example.com" {
		t.Errorf("origins: got %v", cfg.CallbackOrigins)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CHAT_SERVER_URL=https://from-file.example.com\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// variables that are already set win over the file
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("CHAT_SERVER_URL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://from-file.example.com" {
		t.Errorf("server url: got %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServerURL:          "https://chat.example.com",
		StoreBackend:       StoreSQLite,
		SQLitePath:         "chat.db",
		TokenEncryptionKey: "secret",
		CallbackPort:       8765,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing server", func(c *Config) { c.ServerURL = "" }, "CHAT_SERVER_URL"},
		{"postgres without url", func(c *Config) { c.StoreBackend = StorePostgres }, "DATABASE_URL"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }, "STORE_BACKEND"},
		{"missing key", func(c *Config) { c.TokenEncryptionKey = "" }, "TOKEN_ENCRYPTION_KEY"},
		{"bad port", func(c *Config) { c.CallbackPort = 70000 }, "CALLBACK_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("%s: got %v, want %v", in, got, want)
		}
	}
}
