package oauth

import (
	"errors"
	"net/url"
	"testing"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

func TestAuthURL(t *testing.T) {
	builder := NewURLBuilder(URLBuilderConfig{})

	tests := []struct {
		provider     domain.OAuthProvider
		wantHost     string
		wantPath     string
		wantScope    string
		wantRedirect string
	}{
		{domain.OAuthGitHub, "github.com", "/login/oauth/authorize", "user:email", ""},
		{domain.OAuthGoogle, "accounts.google.com", "/o/oauth2/auth", "email profile", "https://chat.example.com/_oauth/google?close"},
		{domain.OAuthLinkedIn, "www.linkedin.com", "/oauth/v2/authorization", "r_liteprofile r_emailaddress", "https://chat.example.com/_oauth/linkedin?close"},
		{domain.OAuthGitLab, "gitlab.com", "/oauth/authorize", "read_user", "https://chat.example.com/_oauth/gitlab?close"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			raw, err := builder.AuthURL(tt.provider, "client-1", "https://chat.example.com/", "state-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("parse %q: %v", raw, err)
			}
			if u.Host != tt.wantHost || u.Path != tt.wantPath {
				t.Errorf("endpoint: got %s%s", u.Host, u.Path)
			}

			q := u.Query()
			if q.Get("client_id") != "client-1" {
				t.Errorf("client_id: got %q", q.Get("client_id"))
			}
			if q.Get("state") != "state-1" {
				t.Errorf("state: got %q", q.Get("state"))
			}
			if q.Get("response_type") != "code" {
				t.Errorf("response_type: got %q", q.Get("response_type"))
			}
			if q.Get("scope") != tt.wantScope {
				t.Errorf("scope: got %q, want %q", q.Get("scope"), tt.wantScope)
			}
			if q.Get("redirect_uri") != tt.wantRedirect {
				t.Errorf("redirect_uri: got %q, want %q", q.Get("redirect_uri"), tt.wantRedirect)
			}
		})
	}
}

func TestAuthURL_Unsupported(t *testing.T) {
	builder := NewURLBuilder(URLBuilderConfig{})

	for _, provider := range []domain.OAuthProvider{domain.OAuthFacebook, domain.OAuthTwitter, domain.OAuthMeteor, "unknown"} {
		if _, err := builder.AuthURL(provider, "client", "https://chat.example.com", "s"); !errors.Is(err, domain.ErrUnsupportedProvider) {
			t.Errorf("%s: expected ErrUnsupportedProvider, got %v", provider, err)
		}
	}
}

func TestAuthURL_RequiresClientID(t *testing.T) {
	builder := NewURLBuilder(URLBuilderConfig{})
	if _, err := builder.AuthURL(domain.OAuthGitHub, "", "https://chat.example.com", "s"); err == nil {
		t.Error("expected error for empty client id")
	}
}

func TestAuthURL_SelfHostedGitLab(t *testing.T) {
	builder := NewURLBuilder(URLBuilderConfig{GitLabURL: "https://git.example.com/"})

	raw, err := builder.AuthURL(domain.OAuthGitLab, "client", "https://chat.example.com", "s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := url.Parse(raw)
	if u.Host != "git.example.com" || u.Path != "/oauth/authorize" {
		t.Errorf("unexpected endpoint %s%s", u.Host, u.Path)
	}
}
