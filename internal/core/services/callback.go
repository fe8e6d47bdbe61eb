package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
	"github.com/custodia-labs/chat-login/internal/core/ports/driving"
)

// Ensure callbackService implements CallbackService
var _ driving.CallbackService = (*callbackService)(nil)

// callbackService matches CAS and OAuth redirects against the states issued
// at view setup before running the attempt.
type callbackService struct {
	login     driving.LoginService
	states    driven.OAuthStateStore
	serverURL string
	logger    *slog.Logger
}

// NewCallbackService creates a new CallbackService
func NewCallbackService(
	login driving.LoginService,
	states driven.OAuthStateStore,
	serverURL string,
	logger *slog.Logger,
) driving.CallbackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &callbackService{
		login:     login,
		states:    states,
		serverURL: domain.NormalizeServerURL(serverURL),
		logger:    logger,
	}
}

// CompleteCas consumes the CAS state and runs a CAS attempt
func (s *callbackService) CompleteCas(ctx context.Context, token string) (domain.LoginResult, error) {
	if err := s.consume(ctx, token, domain.CredentialCas); err != nil {
		return domain.LoginResult{}, err
	}
	return s.login.Login(ctx, domain.CasCredential{Token: token}), nil
}

// CompleteOauth consumes the OAuth state and runs an OAuth attempt
func (s *callbackService) CompleteOauth(ctx context.Context, token, secret string) (domain.LoginResult, error) {
	if err := s.consume(ctx, token, domain.CredentialOAuth); err != nil {
		return domain.LoginResult{}, err
	}
	return s.login.Login(ctx, domain.OAuthCredential{Token: token, Secret: secret}), nil
}

func (s *callbackService) consume(ctx context.Context, token string, kind domain.CredentialKind) error {
	if token == "" {
		return domain.ErrStateNotFound
	}

	state, err := s.states.Consume(ctx, token)
	if err != nil {
		s.logger.Warn("callback with unknown state", "kind", kind, "error", err)
		return err
	}
	if state.Kind != kind {
		return fmt.Errorf("%w: issued for %s", domain.ErrStateNotFound, state.Kind)
	}
	if state.ServerURL != "" && state.ServerURL != s.serverURL {
		return fmt.Errorf("%w: issued for %s", domain.ErrStateNotFound, state.ServerURL)
	}
	return nil
}
