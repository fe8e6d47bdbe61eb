package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.OAuthStateStore = (*OAuthStateStore)(nil)

const oauthStatePrefix = "chat:login_state:"

// DefaultOAuthStateTTL is how long an issued CAS or OAuth state stays valid
const DefaultOAuthStateTTL = 10 * time.Minute

// OAuthStateStore implements driven.OAuthStateStore using Redis.
// States use Redis TTL for expiry and GETDEL for single use.
type OAuthStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOAuthStateStore creates a new Redis-backed OAuthStateStore
func NewOAuthStateStore(client *redis.Client) *OAuthStateStore {
	return &OAuthStateStore{client: client, ttl: DefaultOAuthStateTTL}
}

// NewOAuthStateStoreWithTTL creates an OAuthStateStore with a custom TTL
func NewOAuthStateStoreWithTTL(client *redis.Client, ttl time.Duration) *OAuthStateStore {
	return &OAuthStateStore{client: client, ttl: ttl}
}

// Save stores a new state with TTL based on ExpiresAt
func (s *OAuthStateStore) Save(ctx context.Context, state *domain.OAuthState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = state.CreatedAt.Add(s.ttl)
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		// Already expired, don't save
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal login state: %w", err)
	}

	if err := s.client.Set(ctx, oauthStatePrefix+state.CredentialToken, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save login state: %w", err)
	}
	return nil
}

// Consume atomically retrieves and deletes the state
func (s *OAuthStateStore) Consume(ctx context.Context, credentialToken string) (*domain.OAuthState, error) {
	data, err := s.client.GetDel(ctx, oauthStatePrefix+credentialToken).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume login state: %w", err)
	}

	var state domain.OAuthState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login state: %w", err)
	}

	// Double-check expiration
	if state.IsExpired() {
		return nil, domain.ErrStateNotFound
	}

	return &state, nil
}
