package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func testSealer(t *testing.T) *secret.Sealer {
	t.Helper()
	sealer, err := secret.NewSealerFromSecret("test-secret", "sqlite")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	return sealer
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopening must not re-run applied migrations
	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sqlDB.Close()

	for _, table := range []string{"accounts", "tokens", "local_values", "login_states"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s: %v", table, err)
		}
	}

	var count int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 applied migration, got %d", count)
	}
}

func TestExtractUpMigration(t *testing.T) {
	got := extractUpMigration("-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "CREATE TABLE a (id INT);" {
		t.Errorf("unexpected up segment %q", got)
	}
	if got := extractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("expected content without markers to pass through, got %q", got)
	}
}

func TestAccountStore(t *testing.T) {
	store := openTestStore(t)
	accounts := store.Accounts()
	ctx := context.Background()

	if _, err := accounts.Get(ctx, "https://chat.example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	icon := "https://chat.example.com/assets/favicon.svg"
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	account := &domain.Account{
		ServerURL: "https://chat.example.com/",
		Username:  "alice",
		AvatarURL: "https://chat.example.com/avatar/alice?format=jpeg",
		IconURL:   &icon,
		CreatedAt: created,
	}
	if err := accounts.Save(ctx, account); err != nil {
		t.Fatalf("save: %v", err)
	}
	account.Username = "alice2"
	if err := accounts.Save(ctx, account); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = accounts.Save(ctx, &domain.Account{ServerURL: "https://a.example.com", Username: "bob", AvatarURL: "x"})

	got, err := accounts.Get(ctx, "https://chat.example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "alice2" {
		t.Errorf("username: got %q", got.Username)
	}
	if got.IconURL == nil || *got.IconURL != icon {
		t.Errorf("icon: got %v", got.IconURL)
	}
	if got.LogoURL != nil {
		t.Errorf("logo: expected nil, got %q", *got.LogoURL)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, created)
	}

	list, err := accounts.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ServerURL != "https://a.example.com" || list[1].ServerURL != "https://chat.example.com" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestTokenStore(t *testing.T) {
	store := openTestStore(t)
	tokens := store.Tokens(testSealer(t))
	ctx := context.Background()

	if _, err := tokens.Get(ctx, "https://chat.example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := tokens.Save(ctx, "https://chat.example.com", &domain.Token{UserID: "u1", AuthToken: "a1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := tokens.Save(ctx, "https://other.example.com", &domain.Token{UserID: "u2", AuthToken: "a2"}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	got, err := tokens.Get(ctx, "https://chat.example.com/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" || got.AuthToken != "a1" {
		t.Errorf("unexpected token %+v", got)
	}

	var sealed []byte
	if err := store.sqlDB.QueryRow(`SELECT sealed_token FROM tokens WHERE server_url = ?`, "https://chat.example.com").Scan(&sealed); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if string(sealed) == "a1" || len(sealed) == 0 {
		t.Error("token should be stored sealed")
	}
}

func TestTokenStore_WrongSecret(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Tokens(testSealer(t)).Save(ctx, "https://chat.example.com", &domain.Token{UserID: "u", AuthToken: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, _ := secret.NewSealerFromSecret("another-secret", "sqlite")
	if _, err := store.Tokens(other).Get(ctx, "https://chat.example.com"); !errors.Is(err, secret.ErrOpenFailed) {
		t.Errorf("expected ErrOpenFailed, got %v", err)
	}
}

func TestLocalStore(t *testing.T) {
	store := openTestStore(t)
	local := store.Local()
	ctx := context.Background()

	if _, err := local.Get(ctx, domain.PushTokenKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_ = local.Save(ctx, domain.PushTokenKey, "push-1")
	_ = local.Save(ctx, domain.PushTokenKey, "push-2")

	got, err := local.Get(ctx, domain.PushTokenKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "push-2" {
		t.Errorf("expected push-2, got %q", got)
	}
}

func TestOAuthStateStore(t *testing.T) {
	store := openTestStore(t)
	states := store.States(0)
	ctx := context.Background()

	state := &domain.OAuthState{CredentialToken: "tok", Kind: domain.CredentialCas, ServerURL: "https://chat.example.com"}
	if err := states.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.ExpiresAt.Sub(state.CreatedAt) != DefaultOAuthStateTTL {
		t.Errorf("expected default TTL, got %v", state.ExpiresAt.Sub(state.CreatedAt))
	}

	got, err := states.Consume(ctx, "tok")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.Kind != domain.CredentialCas || got.ServerURL != "https://chat.example.com" {
		t.Errorf("unexpected state %+v", got)
	}
	if _, err := states.Consume(ctx, "tok"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound on reuse, got %v", err)
	}
}

func TestOAuthStateStore_Expired(t *testing.T) {
	store := openTestStore(t)
	states := store.States(time.Minute)
	ctx := context.Background()

	now := time.Now()
	states.now = func() time.Time { return now }
	_ = states.Save(ctx, &domain.OAuthState{CredentialToken: "old", Kind: domain.CredentialOAuth})
	_ = states.Save(ctx, &domain.OAuthState{CredentialToken: "fresh", Kind: domain.CredentialOAuth, ExpiresAt: now.Add(time.Hour)})

	states.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := states.Consume(ctx, "old"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound for expired state, got %v", err)
	}

	removed, err := states.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := states.Consume(ctx, "fresh"); err != nil {
		t.Errorf("fresh state should survive cleanup: %v", err)
	}
}
