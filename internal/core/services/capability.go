package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// CapabilityGate decides which login affordances a server offers.
type CapabilityGate struct {
	client     driven.ChatClient
	urlBuilder driven.OAuthURLBuilder
	states     driven.OAuthStateStore
	logger     *slog.Logger
	now        func() time.Time
}

// CapabilityGateConfig holds dependencies for CapabilityGate.
type CapabilityGateConfig struct {
	Client     driven.ChatClient
	URLBuilder driven.OAuthURLBuilder
	StateStore driven.OAuthStateStore // Optional: when nil, issued states are not tracked
	Logger     *slog.Logger
}

// NewCapabilityGate creates a new capability gate.
func NewCapabilityGate(cfg CapabilityGateConfig) *CapabilityGate {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CapabilityGate{
		client:     cfg.Client,
		urlBuilder: cfg.URLBuilder,
		states:     cfg.StateStore,
		logger:     logger,
		now:        time.Now,
	}
}

// Base returns the affordances that need no server round trip: the password
// form, sign-up and the CAS button. A fresh CAS token is generated on every call.
func (g *CapabilityGate) Base(ctx context.Context, settings domain.AuthSettings, serverURL string) (domain.LoginViewConfig, error) {
	cfg := domain.LoginViewConfig{
		ShowForm:   settings.LoginFormEnabled,
		ShowSignUp: settings.RegistrationEnabled,
	}

	if settings.CasEnabled {
		token, err := generateRandomString(casTokenLength)
		if err != nil {
			return cfg, fmt.Errorf("generate cas token: %w", err)
		}
		cfg.Cas = &domain.CasButton{
			URL:   domain.CasURL(settings.CasLoginURL, serverURL, token),
			State: token,
		}
		g.track(ctx, token, domain.CredentialCas, serverURL)
	}

	return cfg, nil
}

// OAuth returns the OAuth affordances. A provider is offered only when its
// local setting is on and the server advertises a client ID for it. Failing
// to fetch the service list disables OAuth instead of failing.
func (g *CapabilityGate) OAuth(ctx context.Context, settings domain.AuthSettings, serverURL string) domain.OAuthViewConfig {
	services, err := g.client.SettingsOauth(ctx)
	if err != nil {
		g.logger.Warn("failed to fetch oauth services", "server_url", serverURL, "error", err)
		return domain.NewOAuthViewConfig(nil)
	}
	if len(services) == 0 {
		return domain.NewOAuthViewConfig(nil)
	}

	credentialToken, err := generateRandomString(oauthTokenLength)
	if err != nil {
		g.logger.Error("failed to generate oauth credential token", "error", err)
		return domain.NewOAuthViewConfig(nil)
	}
	state, err := encodeOAuthState(credentialToken)
	if err != nil {
		g.logger.Error("failed to encode oauth state", "error", err)
		return domain.NewOAuthViewConfig(nil)
	}

	var buttons []domain.OAuthButton
	for provider, enabled := range settings.OAuth {
		if enabled && !provider.IsSupported() {
			g.logger.Debug("oauth provider has no login flow", "provider", provider)
		}
	}
	for _, provider := range domain.SupportedOAuthProviders {
		if !settings.OAuthEnabled(provider) {
			continue
		}
		clientID, ok := services.ClientID(provider)
		if !ok {
			g.logger.Debug("oauth provider not advertised by server", "provider", provider)
			continue
		}
		authURL, err := g.urlBuilder.AuthURL(provider, clientID, serverURL, state)
		if err != nil {
			g.logger.Warn("failed to build oauth url", "provider", provider, "error", err)
			continue
		}
		buttons = append(buttons, domain.OAuthButton{
			Provider: provider,
			URL:      authURL,
			State:    state,
		})
	}

	if len(buttons) > 0 {
		g.track(ctx, credentialToken, domain.CredentialOAuth, serverURL)
	}

	return domain.NewOAuthViewConfig(buttons)
}

// track registers an issued correlation token. Failures are logged only.
func (g *CapabilityGate) track(ctx context.Context, token string, kind domain.CredentialKind, serverURL string) {
	if g.states == nil {
		return
	}
	state := &domain.OAuthState{
		CredentialToken: token,
		Kind:            kind,
		ServerURL:       domain.NormalizeServerURL(serverURL),
		CreatedAt:       g.now(),
	}
	if err := g.states.Save(ctx, state); err != nil {
		g.logger.Warn("failed to save login state", "kind", kind, "error", err)
	}
}
