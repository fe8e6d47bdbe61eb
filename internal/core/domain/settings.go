package domain

// OAuthProvider names an OAuth login service as advertised by the server
type OAuthProvider string

const (
	OAuthGitHub   OAuthProvider = "github"
	OAuthGoogle   OAuthProvider = "google"
	OAuthLinkedIn OAuthProvider = "linkedin"
	OAuthGitLab   OAuthProvider = "gitlab"
	OAuthFacebook OAuthProvider = "facebook"
	OAuthTwitter  OAuthProvider = "twitter"
	OAuthMeteor   OAuthProvider = "meteor"
)

// SupportedOAuthProviders lists the providers with an authorization flow,
// in the order their buttons are offered.
var SupportedOAuthProviders = []OAuthProvider{
	OAuthGitHub,
	OAuthGoogle,
	OAuthLinkedIn,
	OAuthGitLab,
}

// IsSupported reports whether the provider has an authorization flow
func (p OAuthProvider) IsSupported() bool {
	for _, supported := range SupportedOAuthProviders {
		if p == supported {
			return true
		}
	}
	return false
}

// AuthSettings is the server's public authentication configuration.
// It is fetched once per server session and never mutated afterwards.
type AuthSettings struct {
	LoginFormEnabled    bool                   `json:"login_form_enabled"`
	RegistrationEnabled bool                   `json:"registration_enabled"`
	CasEnabled          bool                   `json:"cas_enabled"`
	CasLoginURL         string                 `json:"cas_login_url,omitempty"`
	LdapEnabled         bool                   `json:"ldap_enabled"`
	OAuth               map[OAuthProvider]bool `json:"oauth,omitempty"`

	// Asset paths relative to the server URL
	Favicon  *string `json:"favicon,omitempty"`
	WideTile *string `json:"wide_tile,omitempty"`
}

// OAuthEnabled reports whether the local setting for a provider is on
func (s *AuthSettings) OAuthEnabled(provider OAuthProvider) bool {
	return s.OAuth[provider]
}

// OAuthService is one entry of the server-advertised OAuth service list.
// The server sends free-form string maps ("name", "service", "appId", ...).
type OAuthService map[string]string

// OAuthServices is the server-advertised OAuth service list
type OAuthServices []OAuthService

// ClientID finds the first service with any value equal to the provider
// name and returns its appId.
func (s OAuthServices) ClientID(provider OAuthProvider) (string, bool) {
	for _, service := range s {
		for _, value := range service {
			if value != string(provider) {
				continue
			}
			clientID, ok := service["appId"]
			if !ok || clientID == "" {
				return "", false
			}
			return clientID, true
		}
	}
	return "", false
}
