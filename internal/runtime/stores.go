// Package runtime assembles the persistence backends selected by configuration.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/chat-login/internal/adapters/driven/redis"
	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/chat-login/internal/config"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
	"github.com/custodia-labs/chat-login/internal/worker"
)

// sealerSalt domain-separates token keys derived from TOKEN_ENCRYPTION_KEY
const sealerSalt = "chat-login"

// Stores holds the persistence ports used by the login flow.
// SQL backends always hold accounts; when a redis URL is set, tokens,
// login states and local values move to redis.
type Stores struct {
	Accounts driven.AccountStore
	Tokens   driven.TokenStore
	Local    driven.LocalStore
	States   driven.OAuthStateStore

	// Cleaner is set when states live in a SQL backend
	Cleaner worker.StateCleaner

	pingers []func(ctx context.Context) error
	closers []func() error
}

// Open connects the backends named by cfg
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sealer, err := secret.NewSealerFromSecret(cfg.TokenEncryptionKey, sealerSalt)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}

	s := &Stores{}
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		if err := s.openSQLite(cfg, sealer); err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
	case config.StorePostgres:
		if err := s.openPostgres(ctx, cfg, sealer); err != nil {
			return nil, err
		}
		logger.Info("using postgres store")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.RedisURL != "" {
		if err := s.openRedis(ctx, cfg, sealer); err != nil {
			_ = s.Close()
			return nil, err
		}
		logger.Info("using redis for tokens, login states and local values")
	}
	return s, nil
}

func (s *Stores) openSQLite(cfg *config.Config, sealer *secret.Sealer) error {
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	states := store.States(cfg.StateTTL)

	s.Accounts = store.Accounts()
	s.Tokens = store.Tokens(sealer)
	s.Local = store.Local()
	s.States = states
	s.Cleaner = states
	s.closers = append(s.closers, store.Close)
	return nil
}

func (s *Stores) openPostgres(ctx context.Context, cfg *config.Config, sealer *secret.Sealer) error {
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("init schema: %w", err)
	}
	states := postgres.NewOAuthStateStoreWithTTL(db, cfg.StateTTL)

	s.Accounts = postgres.NewAccountStore(db)
	s.Tokens = postgres.NewTokenStore(db, sealer)
	s.Local = postgres.NewLocalStore(db)
	s.States = states
	s.Cleaner = states
	s.pingers = append(s.pingers, db.Ping)
	s.closers = append(s.closers, db.Close)
	return nil
}

func (s *Stores) openRedis(ctx context.Context, cfg *config.Config, sealer *secret.Sealer) error {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect redis: %w", err)
	}
	s.UseRedis(client, sealer, cfg.StateTTL)
	return nil
}

// UseRedis moves tokens, login states and local values to client.
// Redis expires states itself, so the SQL cleaner is dropped.
func (s *Stores) UseRedis(client *redis.Client, sealer *secret.Sealer, stateTTL time.Duration) {
	s.Tokens = redisadapter.NewTokenStore(client, sealer)
	s.States = redisadapter.NewOAuthStateStoreWithTTL(client, stateTTL)
	s.Local = redisadapter.NewLocalStore(client)
	s.Cleaner = nil
	s.pingers = append(s.pingers, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	s.closers = append(s.closers, client.Close)
}

// Ping checks every connected backend
func (s *Stores) Ping(ctx context.Context) error {
	for _, ping := range s.pingers {
		if err := ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every backend, in reverse order of opening
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
