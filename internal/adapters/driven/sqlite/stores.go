package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.AccountStore    = (*AccountStore)(nil)
	_ driven.TokenStore      = (*TokenStore)(nil)
	_ driven.LocalStore      = (*LocalStore)(nil)
	_ driven.OAuthStateStore = (*OAuthStateStore)(nil)
)

// DefaultOAuthStateTTL is the default time-to-live for CAS and OAuth states.
const DefaultOAuthStateTTL = 10 * time.Minute

// AccountStore persists accounts in the accounts table
type AccountStore struct {
	db  *sql.DB
	now func() time.Time
}

// Save creates or updates the account for its server URL
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (server_url, username, avatar_url, icon_url, logo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(server_url) DO UPDATE SET
		   username = excluded.username,
		   avatar_url = excluded.avatar_url,
		   icon_url = excluded.icon_url,
		   logo_url = excluded.logo_url,
		   updated_at = excluded.updated_at`,
		domain.NormalizeServerURL(account.ServerURL),
		account.Username,
		account.AvatarURL,
		nullString(account.IconURL),
		nullString(account.LogoURL),
		toMillis(createdAt),
		toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Get retrieves the account for a server
func (s *AccountStore) Get(ctx context.Context, serverURL string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT server_url, username, avatar_url, icon_url, logo_url, created_at
		 FROM accounts WHERE server_url = ?`,
		domain.NormalizeServerURL(serverURL),
	)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// List returns all accounts ordered by server URL
func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT server_url, username, avatar_url, icon_url, logo_url, created_at
		 FROM accounts ORDER BY server_url`,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var iconURL, logoURL sql.NullString
	var createdAt int64
	if err := row.Scan(
		&account.ServerURL,
		&account.Username,
		&account.AvatarURL,
		&iconURL,
		&logoURL,
		&createdAt,
	); err != nil {
		return nil, err
	}
	account.IconURL = stringPtr(iconURL)
	account.LogoURL = stringPtr(logoURL)
	account.CreatedAt = unixMillisToTime(createdAt)
	return &account, nil
}

// TokenStore persists sealed session tokens in the tokens table
type TokenStore struct {
	db     *sql.DB
	sealer *secret.Sealer
	now    func() time.Time
}

// Save stores the token for a server, replacing any previous one
func (s *TokenStore) Save(ctx context.Context, serverURL string, token *domain.Token) error {
	if token == nil {
		return fmt.Errorf("token is required")
	}
	serverURL = domain.NormalizeServerURL(serverURL)

	sealed, err := s.sealer.SealToken(serverURL, token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tokens (server_url, user_id, sealed_token, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(server_url) DO UPDATE SET
		   user_id = excluded.user_id,
		   sealed_token = excluded.sealed_token,
		   updated_at = excluded.updated_at`,
		serverURL, token.UserID, sealed, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Get retrieves the token for a server
func (s *TokenStore) Get(ctx context.Context, serverURL string) (*domain.Token, error) {
	serverURL = domain.NormalizeServerURL(serverURL)

	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed_token FROM tokens WHERE server_url = ?`, serverURL,
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	token, err := s.sealer.OpenToken(serverURL, sealed)
	if err != nil {
		return nil, fmt.Errorf("open token: %w", err)
	}
	return token, nil
}

// LocalStore persists key-value pairs in the local_values table
type LocalStore struct {
	db  *sql.DB
	now func() time.Time
}

// Get returns the value for key
func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Save stores value under key
func (s *LocalStore) Save(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_values (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// OAuthStateStore persists pending CAS and OAuth states in the login_states table
type OAuthStateStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Save stores a new state
func (s *OAuthStateStore) Save(ctx context.Context, state *domain.OAuthState) error {
	if state.CreatedAt.IsZero() {
		state.CreatedAt = s.now()
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = state.CreatedAt.Add(s.ttl)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO login_states (credential_token, kind, server_url, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		state.CredentialToken,
		string(state.Kind),
		state.ServerURL,
		toMillis(state.CreatedAt),
		toMillis(state.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save login state: %w", err)
	}
	return nil
}

// Consume atomically retrieves and deletes the state
func (s *OAuthStateStore) Consume(ctx context.Context, credentialToken string) (*domain.OAuthState, error) {
	var state domain.OAuthState
	var kind string
	var createdAt, expiresAt int64

	err := s.db.QueryRowContext(ctx,
		`DELETE FROM login_states
		 WHERE credential_token = ? AND expires_at > ?
		 RETURNING credential_token, kind, server_url, created_at, expires_at`,
		credentialToken, toMillis(s.now()),
	).Scan(&state.CredentialToken, &kind, &state.ServerURL, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume login state: %w", err)
	}

	state.Kind = domain.CredentialKind(kind)
	state.CreatedAt = unixMillisToTime(createdAt)
	state.ExpiresAt = unixMillisToTime(expiresAt)
	return &state, nil
}

// Cleanup removes expired states
func (s *OAuthStateStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM login_states WHERE expires_at <= ?`, toMillis(s.now()))
	if err != nil {
		return 0, fmt.Errorf("cleanup login states: %w", err)
	}
	return res.RowsAffected()
}
