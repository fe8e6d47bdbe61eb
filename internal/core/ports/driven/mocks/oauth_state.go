package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockOAuthStateStore implements OAuthStateStore
var _ driven.OAuthStateStore = (*MockOAuthStateStore)(nil)

// MockOAuthStateStore is an in-memory OAuthStateStore for testing
type MockOAuthStateStore struct {
	mu      sync.Mutex
	states  map[string]*domain.OAuthState
	SaveErr error
}

// NewMockOAuthStateStore creates a new MockOAuthStateStore
func NewMockOAuthStateStore() *MockOAuthStateStore {
	return &MockOAuthStateStore{states: make(map[string]*domain.OAuthState)}
}

func (m *MockOAuthStateStore) Save(ctx context.Context, state *domain.OAuthState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *state
	if clone.ExpiresAt.IsZero() {
		clone.ExpiresAt = time.Now().Add(10 * time.Minute)
	}
	m.states[state.CredentialToken] = &clone
	return nil
}

func (m *MockOAuthStateStore) Consume(ctx context.Context, credentialToken string) (*domain.OAuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[credentialToken]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	delete(m.states, credentialToken)
	if state.IsExpired() {
		return nil, domain.ErrStateNotFound
	}
	return state, nil
}

// Tokens returns the outstanding credential tokens of a kind
func (m *MockOAuthStateStore) Tokens(kind domain.CredentialKind) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for token, state := range m.states {
		if state.Kind == kind {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
