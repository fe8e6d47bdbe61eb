package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure OAuthStateStore implements the interface.
var _ driven.OAuthStateStore = (*OAuthStateStore)(nil)

// DefaultOAuthStateTTL is the default time-to-live for CAS and OAuth states.
const DefaultOAuthStateTTL = 10 * time.Minute

// OAuthStateStore implements driven.OAuthStateStore using PostgreSQL.
type OAuthStateStore struct {
	db  *DB
	ttl time.Duration
}

// NewOAuthStateStore creates a new PostgreSQL-backed state store.
func NewOAuthStateStore(db *DB) *OAuthStateStore {
	return &OAuthStateStore{
		db:  db,
		ttl: DefaultOAuthStateTTL,
	}
}

// NewOAuthStateStoreWithTTL creates a state store with custom TTL.
func NewOAuthStateStoreWithTTL(db *DB, ttl time.Duration) *OAuthStateStore {
	return &OAuthStateStore{
		db:  db,
		ttl: ttl,
	}
}

// Save stores a new state.
func (s *OAuthStateStore) Save(ctx context.Context, state *domain.OAuthState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = state.CreatedAt.Add(s.ttl)
	}

	query := `
		INSERT INTO chat_login_states (credential_token, kind, server_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.CredentialToken,
		string(state.Kind),
		state.ServerURL,
		state.CreatedAt,
		state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save login state: %w", err)
	}

	return nil
}

// Consume atomically retrieves and deletes the state.
// Uses DELETE ... RETURNING for atomic single-use semantics.
func (s *OAuthStateStore) Consume(ctx context.Context, credentialToken string) (*domain.OAuthState, error) {
	query := `
		DELETE FROM chat_login_states
		WHERE credential_token = $1 AND expires_at > NOW()
		RETURNING credential_token, kind, server_url, created_at, expires_at
	`

	var state domain.OAuthState
	err := s.db.QueryRowContext(ctx, query, credentialToken).Scan(
		&state.CredentialToken,
		&state.Kind,
		&state.ServerURL,
		&state.CreatedAt,
		&state.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume login state: %w", err)
	}

	return &state, nil
}

// Cleanup removes expired states and returns how many were removed.
func (s *OAuthStateStore) Cleanup(ctx context.Context) (int64, error) {
	query := `DELETE FROM chat_login_states WHERE expires_at < NOW()`

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup login states: %w", err)
	}

	return res.RowsAffected()
}
