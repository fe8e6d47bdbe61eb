package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Default server version thresholds. Overridable at build time with -ldflags.
var (
	DefaultRequiredServerVersion    = "0.62.0"
	DefaultRecommendedServerVersion = "0.64.0"
)

// CompatibilityChecker compares the server version against the
// required and recommended thresholds.
type CompatibilityChecker struct {
	client      driven.ChatClient
	required    domain.ServerVersion
	recommended domain.ServerVersion
}

// NewCompatibilityChecker creates a checker. Empty thresholds use the defaults.
func NewCompatibilityChecker(client driven.ChatClient, required, recommended string) *CompatibilityChecker {
	if required == "" {
		required = DefaultRequiredServerVersion
	}
	if recommended == "" {
		recommended = DefaultRecommendedServerVersion
	}
	return &CompatibilityChecker{
		client:      client,
		required:    domain.ParseServerVersion(required),
		recommended: domain.ParseServerVersion(recommended),
	}
}

// Check fetches the server info and classifies its version.
func (c *CompatibilityChecker) Check(ctx context.Context) (domain.Compatibility, domain.ServerVersion, error) {
	info, err := c.client.ServerInfo(ctx)
	if err != nil {
		return domain.Compatible, domain.ServerVersion{}, fmt.Errorf("fetch server info: %w", err)
	}

	version := domain.ParseServerVersion(info.Version)
	return c.Classify(version), version, nil
}

// Classify maps a version onto the thresholds.
func (c *CompatibilityChecker) Classify(version domain.ServerVersion) domain.Compatibility {
	switch {
	case !version.IsAtLeast(c.required):
		return domain.Incompatible
	case !version.IsAtLeast(c.recommended):
		return domain.NotRecommended
	default:
		return domain.Compatible
	}
}
