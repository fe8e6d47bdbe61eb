package driven

import "github.com/custodia-labs/chat-login/internal/core/domain"

// OAuthURLBuilder builds provider authorization URLs
type OAuthURLBuilder interface {
	// AuthURL returns the authorization URL for provider.
	// Returns domain.ErrUnsupportedProvider for providers without a flow.
	AuthURL(provider domain.OAuthProvider, clientID, serverURL, state string) (string, error)
}
