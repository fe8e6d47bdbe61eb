package driven

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// OAuthStateStore tracks CAS and OAuth correlation tokens issued at view setup.
// States are single-use and expire after a short period.
type OAuthStateStore interface {
	// Save stores a new state. A zero ExpiresAt gets the store's default TTL.
	Save(ctx context.Context, state *domain.OAuthState) error

	// Consume atomically retrieves and deletes the state.
	// Returns domain.ErrStateNotFound if it doesn't exist, expired or was used.
	Consume(ctx context.Context, credentialToken string) (*domain.OAuthState, error)
}
