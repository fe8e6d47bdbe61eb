package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/config"
	"github.com/custodia-labs/chat-login/internal/core/domain"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreBackend:       config.StoreSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "login.db"),
		TokenEncryptionKey: "test-secret",
		StateTTL:           time.Minute,
	}
}

func TestOpen_SQLite(t *testing.T) {
	stores, err := Open(context.Background(), sqliteConfig(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	if err := stores.Tokens.Save(ctx, "https://chat.example.com", &domain.Token{UserID: "u", AuthToken: "a"}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	token, err := stores.Tokens.Get(ctx, "https://chat.example.com")
	if err != nil || token.AuthToken != "a" {
		t.Fatalf("get token: %+v, %v", token, err)
	}
	if stores.Cleaner == nil {
		t.Error("sqlite states need a cleaner")
	}
	if err := stores.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOpen_RequiresKey(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.TokenEncryptionKey = ""

	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Error("expected error without encryption key")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StoreBackend = "mongo"

	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestOpen_SQLiteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	stores, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	if stores.Cleaner != nil {
		t.Error("redis states expire on their own")
	}
	if err := stores.States.Save(ctx, &domain.OAuthState{CredentialToken: "tok", Kind: domain.CredentialCas}); err != nil {
		t.Fatalf("save state: %v", err)
	}
	if !mr.Exists("chat:login_state:tok") {
		t.Error("state should be stored in redis")
	}
	if err := stores.Tokens.Save(ctx, "https://chat.example.com", &domain.Token{UserID: "u", AuthToken: "a"}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if !mr.Exists("chat:token:https://chat.example.com") {
		t.Error("token should be stored in redis")
	}
	token, err := stores.Tokens.Get(ctx, "https://chat.example.com")
	if err != nil || token.AuthToken != "a" {
		t.Fatalf("get token: %+v, %v", token, err)
	}
	if err := stores.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}

	mr.Close()
	if err := stores.Ping(ctx); err == nil {
		t.Error("expected ping failure after redis stops")
	}
}

func TestUseRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sealer, err := secret.NewSealerFromSecret("test-secret", sealerSalt)
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}

	stores := &Stores{}
	stores.UseRedis(client, sealer, time.Minute)

	ctx := context.Background()
	if err := stores.Local.Save(ctx, domain.PushTokenKey, "push"); err != nil {
		t.Fatalf("save local: %v", err)
	}
	if _, err := stores.Tokens.Get(ctx, "https://chat.example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := stores.States.Consume(ctx, "missing"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound, got %v", err)
	}
	if err := stores.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
