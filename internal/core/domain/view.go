package domain

// CasButton is the CAS login affordance
type CasButton struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// OAuthButton is one OAuth provider login affordance
type OAuthButton struct {
	Provider OAuthProvider `json:"provider"`
	URL      string        `json:"url"`
	State    string        `json:"state"`
}

// OAuthViewConfig describes the OAuth section of the login view.
// Expandable is set when more providers are offered than fit the compact row.
type OAuthViewConfig struct {
	Buttons    []OAuthButton `json:"buttons,omitempty"`
	Enabled    bool          `json:"enabled"`
	Expandable bool          `json:"expandable"`
}

// MaxCompactOAuthButtons is the number of providers shown without expansion
const MaxCompactOAuthButtons = 3

// NewOAuthViewConfig derives the aggregate flags from the offered buttons
func NewOAuthViewConfig(buttons []OAuthButton) OAuthViewConfig {
	return OAuthViewConfig{
		Buttons:    buttons,
		Enabled:    len(buttons) > 0,
		Expandable: len(buttons) > MaxCompactOAuthButtons,
	}
}

// LoginViewConfig is the set of login affordances the view should offer
type LoginViewConfig struct {
	ShowForm   bool            `json:"show_form"`
	ShowSignUp bool            `json:"show_sign_up"`
	Cas        *CasButton      `json:"cas,omitempty"`
	OAuth      OAuthViewConfig `json:"oauth"`
}
