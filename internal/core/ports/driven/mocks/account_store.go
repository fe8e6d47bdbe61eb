package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockAccountStore implements AccountStore
var _ driven.AccountStore = (*MockAccountStore)(nil)

// MockAccountStore is a mock implementation of AccountStore for testing
type MockAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	Log      *CallLog
	SaveErr  error
}

// NewMockAccountStore creates a new MockAccountStore
func NewMockAccountStore(log *CallLog) *MockAccountStore {
	return &MockAccountStore{
		accounts: make(map[string]*domain.Account),
		Log:      log,
	}
}

func (m *MockAccountStore) Save(ctx context.Context, account *domain.Account) error {
	m.Log.Record("accounts.Save")
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *account
	m.accounts[account.ServerURL] = &clone
	return nil
}

func (m *MockAccountStore) Get(ctx context.Context, serverURL string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[serverURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (m *MockAccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ServerURL < result[j].ServerURL })
	return result, nil
}
