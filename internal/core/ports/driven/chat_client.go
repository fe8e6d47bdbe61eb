package driven

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// ChatClient is the chat server capability consumed by the login flow.
// Every method fails with *domain.RemoteError on remote or transport errors.
// Login methods remember the returned token for the calls that need a session.
type ChatClient interface {
	// LoginWithEmail authenticates with an email address and password
	LoginWithEmail(ctx context.Context, email, password string) (*domain.Token, error)

	// LoginWithLdap authenticates a username and password against the server's LDAP backend
	LoginWithLdap(ctx context.Context, username, password string) (*domain.Token, error)

	// Login authenticates with a plain username and password
	Login(ctx context.Context, username, password string) (*domain.Token, error)

	// LoginWithCas exchanges a CAS correlation token
	LoginWithCas(ctx context.Context, casToken string) (*domain.Token, error)

	// LoginWithOauth exchanges an OAuth credential token and secret
	LoginWithOauth(ctx context.Context, credentialToken, credentialSecret string) (*domain.Token, error)

	// Me returns the authenticated user's profile
	Me(ctx context.Context) (*domain.User, error)

	// Logout invalidates the current server session
	Logout(ctx context.Context) error

	// ServerInfo returns the public server information
	ServerInfo(ctx context.Context) (*domain.ServerInfo, error)

	// SettingsOauth returns the server-advertised OAuth services
	SettingsOauth(ctx context.Context) (domain.OAuthServices, error)

	// PublicSettings returns the server's public authentication settings
	PublicSettings(ctx context.Context) (*domain.AuthSettings, error)

	// RegisterPushToken registers a push notification token for the current session
	RegisterPushToken(ctx context.Context, pushToken string) error
}
