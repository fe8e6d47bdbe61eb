package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockLocalStore implements LocalStore
var _ driven.LocalStore = (*MockLocalStore)(nil)

// MockLocalStore is a mock implementation of LocalStore for testing
type MockLocalStore struct {
	mu      sync.RWMutex
	values  map[string]string
	Log     *CallLog
	SaveErr error
	GetErr  error
}

// NewMockLocalStore creates a new MockLocalStore
func NewMockLocalStore(log *CallLog) *MockLocalStore {
	return &MockLocalStore{
		values: make(map[string]string),
		Log:    log,
	}
}

func (m *MockLocalStore) Get(ctx context.Context, key string) (string, error) {
	m.Log.Record("local.Get:" + key)
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (m *MockLocalStore) Save(ctx context.Context, key, value string) error {
	m.Log.Record("local.Save:" + key)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Set stores a value without recording a call
func (m *MockLocalStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Value returns a stored value without recording a call
func (m *MockLocalStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok
}
