package mocks

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockChatClient implements ChatClient
var _ driven.ChatClient = (*MockChatClient)(nil)

// MockChatClient is a mock implementation of ChatClient for testing.
// Every call is recorded as "client.<Method>"; unset funcs return canned values.
type MockChatClient struct {
	Log *CallLog

	LoginWithEmailFn    func(ctx context.Context, email, password string) (*domain.Token, error)
	LoginWithLdapFn     func(ctx context.Context, username, password string) (*domain.Token, error)
	LoginFn             func(ctx context.Context, username, password string) (*domain.Token, error)
	LoginWithCasFn      func(ctx context.Context, casToken string) (*domain.Token, error)
	LoginWithOauthFn    func(ctx context.Context, credentialToken, credentialSecret string) (*domain.Token, error)
	MeFn                func(ctx context.Context) (*domain.User, error)
	LogoutFn            func(ctx context.Context) error
	ServerInfoFn        func(ctx context.Context) (*domain.ServerInfo, error)
	SettingsOauthFn     func(ctx context.Context) (domain.OAuthServices, error)
	PublicSettingsFn    func(ctx context.Context) (*domain.AuthSettings, error)
	RegisterPushTokenFn func(ctx context.Context, pushToken string) error
}

// NewMockChatClient creates a new MockChatClient recording into log (may be nil)
func NewMockChatClient(log *CallLog) *MockChatClient {
	if log == nil {
		log = NewCallLog()
	}
	return &MockChatClient{Log: log}
}

// DefaultToken is returned by the login methods when no func is set
func DefaultToken() *domain.Token {
	return &domain.Token{UserID: "user-123", AuthToken: "auth-token-abc"}
}

func (m *MockChatClient) LoginWithEmail(ctx context.Context, email, password string) (*domain.Token, error) {
	m.Log.Record("client.LoginWithEmail")
	if m.LoginWithEmailFn != nil {
		return m.LoginWithEmailFn(ctx, email, password)
	}
	return DefaultToken(), nil
}

func (m *MockChatClient) LoginWithLdap(ctx context.Context, username, password string) (*domain.Token, error) {
	m.Log.Record("client.LoginWithLdap")
	if m.LoginWithLdapFn != nil {
		return m.LoginWithLdapFn(ctx, username, password)
	}
	return DefaultToken(), nil
}

func (m *MockChatClient) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	m.Log.Record("client.Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return DefaultToken(), nil
}

func (m *MockChatClient) LoginWithCas(ctx context.Context, casToken string) (*domain.Token, error) {
	m.Log.Record("client.LoginWithCas")
	if m.LoginWithCasFn != nil {
		return m.LoginWithCasFn(ctx, casToken)
	}
	return DefaultToken(), nil
}

func (m *MockChatClient) LoginWithOauth(ctx context.Context, credentialToken, credentialSecret string) (*domain.Token, error) {
	m.Log.Record("client.LoginWithOauth")
	if m.LoginWithOauthFn != nil {
		return m.LoginWithOauthFn(ctx, credentialToken, credentialSecret)
	}
	return DefaultToken(), nil
}

func (m *MockChatClient) Me(ctx context.Context) (*domain.User, error) {
	m.Log.Record("client.Me")
	if m.MeFn != nil {
		return m.MeFn(ctx)
	}
	return &domain.User{ID: "user-123", Username: "alice", Name: "Alice"}, nil
}

func (m *MockChatClient) Logout(ctx context.Context) error {
	m.Log.Record("client.Logout")
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx)
	}
	return nil
}

func (m *MockChatClient) ServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	m.Log.Record("client.ServerInfo")
	if m.ServerInfoFn != nil {
		return m.ServerInfoFn(ctx)
	}
	return &domain.ServerInfo{Version: "1.0.0"}, nil
}

func (m *MockChatClient) SettingsOauth(ctx context.Context) (domain.OAuthServices, error) {
	m.Log.Record("client.SettingsOauth")
	if m.SettingsOauthFn != nil {
		return m.SettingsOauthFn(ctx)
	}
	return nil, nil
}

func (m *MockChatClient) PublicSettings(ctx context.Context) (*domain.AuthSettings, error) {
	m.Log.Record("client.PublicSettings")
	if m.PublicSettingsFn != nil {
		return m.PublicSettingsFn(ctx)
	}
	return &domain.AuthSettings{LoginFormEnabled: true}, nil
}

func (m *MockChatClient) RegisterPushToken(ctx context.Context, pushToken string) error {
	m.Log.Record("client.RegisterPushToken")
	if m.RegisterPushTokenFn != nil {
		return m.RegisterPushTokenFn(ctx, pushToken)
	}
	return nil
}
