package mocks

import (
	"fmt"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockOAuthURLBuilder implements OAuthURLBuilder
var _ driven.OAuthURLBuilder = (*MockOAuthURLBuilder)(nil)

// MockOAuthURLBuilder returns predictable URLs of the form
// "https://<provider>.test/authorize?client_id=<id>&state=<state>".
type MockOAuthURLBuilder struct{}

// NewMockOAuthURLBuilder creates a new MockOAuthURLBuilder
func NewMockOAuthURLBuilder() *MockOAuthURLBuilder {
	return &MockOAuthURLBuilder{}
}

func (m *MockOAuthURLBuilder) AuthURL(provider domain.OAuthProvider, clientID, serverURL, state string) (string, error) {
	if !provider.IsSupported() {
		return "", domain.ErrUnsupportedProvider
	}
	return fmt.Sprintf("https://%s.test/authorize?client_id=%s&state=%s", provider, clientID, state), nil
}
