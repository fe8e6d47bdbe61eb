package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LocalStore = (*LocalStore)(nil)

// LocalStore implements driven.LocalStore using PostgreSQL
type LocalStore struct {
	db *DB
}

// NewLocalStore creates a new LocalStore
func NewLocalStore(db *DB) *LocalStore {
	return &LocalStore{db: db}
}

// Get returns the value for key
func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM chat_local WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Save stores value under key
func (s *LocalStore) Save(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO chat_local (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
