package driven

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// TokenStore persists session tokens keyed by server URL, so sessions on
// several servers can coexist.
type TokenStore interface {
	// Save stores the token for a server, replacing any previous one
	Save(ctx context.Context, serverURL string, token *domain.Token) error

	// Get retrieves the token for a server (domain.ErrNotFound when absent)
	Get(ctx context.Context, serverURL string) (*domain.Token, error)
}
