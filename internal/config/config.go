// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is the process configuration
type Config struct {
	// Chat server
	ServerURL          string        `env:"CHAT_SERVER_URL"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	RequiredVersion    string        `env:"REQUIRED_SERVER_VERSION" envDefault:"0.62.0"`
	RecommendedVersion string        `env:"RECOMMENDED_SERVER_VERSION" envDefault:"0.64.0"`
	CasSettleDelay     time.Duration `env:"CAS_SETTLE_DELAY" envDefault:"3s"`
	KeepSessionOnError bool          `env:"KEEP_SESSION_ON_PERSIST_FAILURE" envDefault:"false"`
	GitLabURL          string        `env:"GITLAB_URL"`
	PushAppName        string        `env:"PUSH_APP_NAME" envDefault:"chat-login"`

	// Connectivity
	ConnectivityProbeAddr    string        `env:"CONNECTIVITY_PROBE_ADDR" envDefault:"8.8.8.8:53"`
	ConnectivityProbeTimeout time.Duration `env:"CONNECTIVITY_PROBE_TIMEOUT" envDefault:"1500ms"`

	// Persistence
	StoreBackend       string        `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath         string        `env:"SQLITE_PATH" envDefault:"chat-login.db"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	DBConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	RedisURL           string        `env:"REDIS_URL"`
	TokenEncryptionKey string        `env:"TOKEN_ENCRYPTION_KEY"`
	StateTTL           time.Duration `env:"LOGIN_STATE_TTL" envDefault:"10m"`
	StateCleanup       time.Duration `env:"LOGIN_STATE_CLEANUP_INTERVAL" envDefault:"5m"`

	// Callback server
	CallbackHost    string   `env:"CALLBACK_HOST" envDefault:"127.0.0.1"`
	CallbackPort    int      `env:"CALLBACK_PORT" envDefault:"8765"`
	CallbackOrigins []string `env:"CALLBACK_ALLOWED_ORIGINS" envSeparator:","`

	// Observability
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file and parses the environment into Config.
// Variables already set in the environment win over the .env file.
func Load(dotenvFiles ...string) (*Config, error) {
	// Missing .env files are not an error
	_ = godotenv.Load(dotenvFiles...)

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv parses environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ServerURL) == "" {
		errs = append(errs, errors.New("CHAT_SERVER_URL is required"))
	}
	switch c.StoreBackend {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.TokenEncryptionKey == "" {
		errs = append(errs, errors.New("TOKEN_ENCRYPTION_KEY is required"))
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		errs = append(errs, fmt.Errorf("CALLBACK_PORT %d out of range", c.CallbackPort))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values are info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
