package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockTokenStore implements TokenStore
var _ driven.TokenStore = (*MockTokenStore)(nil)

// MockTokenStore is a mock implementation of TokenStore for testing
type MockTokenStore struct {
	mu      sync.RWMutex
	tokens  map[string]*domain.Token
	Log     *CallLog
	SaveErr error
}

// NewMockTokenStore creates a new MockTokenStore
func NewMockTokenStore(log *CallLog) *MockTokenStore {
	return &MockTokenStore{
		tokens: make(map[string]*domain.Token),
		Log:    log,
	}
}

func (m *MockTokenStore) Save(ctx context.Context, serverURL string, token *domain.Token) error {
	m.Log.Record("tokens.Save")
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *token
	m.tokens[serverURL] = &clone
	return nil
}

func (m *MockTokenStore) Get(ctx context.Context, serverURL string) (*domain.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[serverURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return token, nil
}

// Count returns the number of stored tokens
func (m *MockTokenStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
