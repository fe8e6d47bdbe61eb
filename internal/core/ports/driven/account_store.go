package driven

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// AccountStore handles account persistence
type AccountStore interface {
	// Save creates or updates the account for its server URL
	Save(ctx context.Context, account *domain.Account) error

	// Get retrieves the account for a server (domain.ErrNotFound when absent)
	Get(ctx context.Context, serverURL string) (*domain.Account, error)

	// List returns all accounts ordered by server URL
	List(ctx context.Context) ([]*domain.Account, error)
}
