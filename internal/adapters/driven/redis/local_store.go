package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LocalStore = (*LocalStore)(nil)

const localPrefix = "chat:local:"

// LocalStore implements driven.LocalStore as plain Redis strings
type LocalStore struct {
	client *redis.Client
}

// NewLocalStore creates a new Redis-backed LocalStore
func NewLocalStore(client *redis.Client) *LocalStore {
	return &LocalStore{client: client}
}

// Get returns the value for key
func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, localPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Save stores value under key
func (s *LocalStore) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, localPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
