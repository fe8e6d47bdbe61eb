package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore implements driven.TokenStore using PostgreSQL.
// Tokens are sealed before they reach the database.
type TokenStore struct {
	db     *DB
	sealer *secret.Sealer
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(db *DB, sealer *secret.Sealer) *TokenStore {
	return &TokenStore{db: db, sealer: sealer}
}

// Save stores the token for a server, replacing any previous one
func (s *TokenStore) Save(ctx context.Context, serverURL string, token *domain.Token) error {
	serverURL = domain.NormalizeServerURL(serverURL)

	sealed, err := s.sealer.SealToken(serverURL, token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	query := `
		INSERT INTO chat_tokens (server_url, user_id, sealed_token, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (server_url) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			sealed_token = EXCLUDED.sealed_token,
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, serverURL, token.UserID, sealed); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Get retrieves the token for a server
func (s *TokenStore) Get(ctx context.Context, serverURL string) (*domain.Token, error) {
	serverURL = domain.NormalizeServerURL(serverURL)

	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed_token FROM chat_tokens WHERE server_url = $1`,
		serverURL,
	).Scan(&sealed)
	if err == sql.ErrNoRows {
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
