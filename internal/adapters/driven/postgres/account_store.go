package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AccountStore = (*AccountStore)(nil)

// AccountStore implements driven.AccountStore using PostgreSQL
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new AccountStore
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Save creates or updates the account for its server URL
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO chat_accounts (server_url, username, avatar_url, icon_url, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (server_url) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			icon_url = EXCLUDED.icon_url,
			logo_url = EXCLUDED.logo_url,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		domain.NormalizeServerURL(account.ServerURL),
		account.Username,
		account.AvatarURL,
		nullText(account.IconURL),
		nullText(account.LogoURL),
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Get retrieves the account for a server
func (s *AccountStore) Get(ctx context.Context, serverURL string) (*domain.Account, error) {
	query := `
		SELECT server_url, username, avatar_url, icon_url, logo_url, created_at
		FROM chat_accounts
		WHERE server_url = $1
	`

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, domain.NormalizeServerURL(serverURL)))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// List returns all accounts ordered by server URL
func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT server_url, username, avatar_url, icon_url, logo_url, created_at
		FROM chat_accounts
		ORDER BY server_url
	`

	rows, err := s.db.QueryContext(ctx, query)
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
	return accounts, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var iconURL, logoURL sql.NullString

	err := row.Scan(
		&account.ServerURL,
		&account.Username,
		&account.AvatarURL,
		&iconURL,
		&logoURL,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.IconURL = textPtr(iconURL)
	account.LogoURL = textPtr(logoURL)
	return &account, nil
}
