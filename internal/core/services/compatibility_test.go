package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven/mocks"
)

func TestCompatibilityChecker_Check(t *testing.T) {
	tests := []struct {
		version string
		want    domain.Compatibility
	}{
		{"0.61.9", domain.Incompatible},
		{"0.9.100", domain.Incompatible},
		{"garbage", domain.Incompatible},
		{"0.62.0", domain.NotRecommended},
		{"0.63.99-develop", domain.NotRecommended},
		{"0.64.0", domain.Compatible},
		{"0.65", domain.Compatible},
		{"3.0.0-rc.2", domain.Compatible},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			client := mocks.NewMockChatClient(nil)
			client.ServerInfoFn = func(ctx context.Context) (*domain.ServerInfo, error) {
				return &domain.ServerInfo{Version: tt.version}, nil
			}

			got, version, err := NewCompatibilityChecker(client, "", "").Check(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.version, version.Raw)
		})
	}
}

func TestCompatibilityChecker_CustomThresholds(t *testing.T) {
	checker := NewCompatibilityChecker(nil, "1.0.0", "2.0.0")

	assert.Equal(t, domain.Incompatible, checker.Classify(domain.ParseServerVersion("0.99.99")))
	assert.Equal(t, domain.NotRecommended, checker.Classify(domain.ParseServerVersion("1.5.0")))
	assert.Equal(t, domain.Compatible, checker.Classify(domain.ParseServerVersion("2.0.0")))
}

func TestCompatibilityChecker_FetchError(t *testing.T) {
	client := mocks.NewMockChatClient(nil)
	remote := &domain.RemoteError{Kind: domain.RemoteErrorTransport, Err: errors.New("refused")}
	client.ServerInfoFn = func(ctx context.Context) (*domain.ServerInfo, error) {
		return nil, remote
	}

	_, _, err := NewCompatibilityChecker(client, "", "").Check(context.Background())

	assert.ErrorIs(t, err, remote)
}
