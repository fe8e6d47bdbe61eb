package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/secret"
	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenStore = (*TokenStore)(nil)

const (
	// Key prefixes for Redis
	tokenPrefix     = "chat:token:"
	tokenServersKey = "chat:token:servers"
)

// TokenStore implements driven.TokenStore using Redis.
// Tokens are sealed with the server URL as associated data, so a value
// copied to another server's key cannot be opened. They do not expire.
type TokenStore struct {
	client *redis.Client
	sealer *secret.Sealer
}

// NewTokenStore creates a new Redis-backed TokenStore
func NewTokenStore(client *redis.Client, sealer *secret.Sealer) *TokenStore {
	return &TokenStore{client: client, sealer: sealer}
}

// Save stores the token for a server
func (s *TokenStore) Save(ctx context.Context, serverURL string, token *domain.Token) error {
	if token == nil {
		return fmt.Errorf("save token: nil token")
	}
	serverURL = domain.NormalizeServerURL(serverURL)

	data, err := s.sealer.SealToken(serverURL, token)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}

	// Use pipeline so the index never points at a missing token
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenPrefix+serverURL, data, 0)
	pipe.SAdd(ctx, tokenServersKey, serverURL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get retrieves the token for a server
func (s *TokenStore) Get(ctx context.Context, serverURL string) (*domain.Token, error) {
	serverURL = domain.NormalizeServerURL(serverURL)

	data, err := s.client.Get(ctx, tokenPrefix+serverURL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	token, err := s.sealer.OpenToken(serverURL, data)
	if err != nil {
		return nil, fmt.Errorf("failed to open token: %w", err)
	}

	return token, nil
}

// Delete removes the token for a server
func (s *TokenStore) Delete(ctx context.Context, serverURL string) error {
	serverURL = domain.NormalizeServerURL(serverURL)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tokenPrefix+serverURL)
	pipe.SRem(ctx, tokenServersKey, serverURL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}

// Servers lists the server URLs that have a stored token
func (s *TokenStore) Servers(ctx context.Context) ([]string, error) {
	servers, err := s.client.SMembers(ctx, tokenServersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list token servers: %w", err)
	}
	return servers, nil
}
