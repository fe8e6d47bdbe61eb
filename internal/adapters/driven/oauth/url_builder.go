// Package oauth builds provider authorization URLs for the OAuth login buttons.
package oauth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.OAuthURLBuilder = (*URLBuilder)(nil)

// providerConfig is the static authorization setup of one provider
type providerConfig struct {
	endpoint oauth2.Endpoint
	scopes   []string
	// redirect is set when the provider needs an explicit redirect_uri.
	// GitHub uses the callback registered with the OAuth app.
	redirect bool
}

// URLBuilder builds authorization code URLs with golang.org/x/oauth2
type URLBuilder struct {
	providers map[domain.OAuthProvider]providerConfig
}

// URLBuilderConfig holds optional overrides
type URLBuilderConfig struct {
	// GitLabURL points at a self-hosted GitLab instance. Defaults to gitlab.com.
	GitLabURL string
}

// NewURLBuilder creates a URL builder for the supported providers
func NewURLBuilder(cfg URLBuilderConfig) *URLBuilder {
	gitlab := endpoints.GitLab
	if base := strings.TrimRight(strings.TrimSpace(cfg.GitLabURL), "/"); base != "" {
		gitlab = oauth2.Endpoint{
			AuthURL:  base + "/oauth/authorize",
			TokenURL: base + "/oauth/token",
		}
	}

	return &URLBuilder{
		providers: map[domain.OAuthProvider]providerConfig{
			domain.OAuthGitHub: {
				endpoint: endpoints.GitHub,
				scopes:   []string{"user:email"},
			},
			domain.OAuthGoogle: {
				endpoint: endpoints.Google,
				scopes:   []string{"email", "profile"},
				redirect: true,
			},
			domain.OAuthLinkedIn: {
				endpoint: endpoints.LinkedIn,
				scopes:   []string{"r_liteprofile", "r_emailaddress"},
				redirect: true,
			},
			domain.OAuthGitLab: {
				endpoint: gitlab,
				scopes:   []string{"read_user"},
				redirect: true,
			},
		},
	}
}

// AuthURL returns the authorization URL for provider
func (b *URLBuilder) AuthURL(provider domain.OAuthProvider, clientID, serverURL, state string) (string, error) {
	pc, ok := b.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	if clientID == "" {
		return "", fmt.Errorf("client id is required for %s", provider)
	}

	config := &oauth2.Config{
		ClientID: clientID,
		Endpoint: pc.endpoint,
		Scopes:   pc.scopes,
	}
	if pc.redirect {
		config.RedirectURL = domain.OAuthRedirectURL(serverURL, provider)
	}
	return config.AuthCodeURL(state), nil
}
