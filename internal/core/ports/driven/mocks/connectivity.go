package mocks

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockConnectivity implements Connectivity
var _ driven.Connectivity = (*MockConnectivity)(nil)

// MockConnectivity reports a configurable reachability
type MockConnectivity struct {
	offline atomic.Bool
}

// NewMockConnectivity creates a MockConnectivity that starts online
func NewMockConnectivity() *MockConnectivity {
	return &MockConnectivity{}
}

func (m *MockConnectivity) HasInternetAccess(ctx context.Context) bool {
	return !m.offline.Load()
}

// SetOnline changes the reported reachability
func (m *MockConnectivity) SetOnline(online bool) {
	m.offline.Store(!online)
}
