package driven

import "context"

// LocalStore is the local key-value store
type LocalStore interface {
	// Get returns the value for key (domain.ErrNotFound when absent)
	Get(ctx context.Context, key string) (string, error)

	// Save stores value under key
	Save(ctx context.Context, key, value string) error
}
