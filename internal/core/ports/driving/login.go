package driving

import (
	"context"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// LoginService drives the login screen of one chat server.
// The Authenticate* entry points and SignUp return immediately; outcomes are
// reported through the LoginView and Navigator, never as errors.
type LoginService interface {
	// SetupView configures the login affordances and starts the server
	// compatibility check
	SetupView(ctx context.Context)

	// AuthenticateWithUserAndPassword starts a password attempt
	AuthenticateWithUserAndPassword(usernameOrEmail, password string)

	// AuthenticateWithCas starts a CAS attempt with the CAS correlation token
	AuthenticateWithCas(token string)

	// AuthenticateWithOauth starts an OAuth attempt with the credential token and secret
	AuthenticateWithOauth(token, secret string)

	// Login runs one attempt synchronously and returns its result
	Login(ctx context.Context, credential domain.LoginCredential) domain.LoginResult

	// SignUp navigates to registration
	SignUp()

	// State returns the current attempt state
	State() domain.AttemptState

	// Wait blocks until every launched task has finished
	Wait()

	// Close cancels pending work and waits for it; no view call happens afterwards
	Close()
}

// CallbackService completes CAS and OAuth redirects received out of band
type CallbackService interface {
	// CompleteCas consumes the CAS state and runs a CAS attempt
	CompleteCas(ctx context.Context, token string) (domain.LoginResult, error)

	// CompleteOauth consumes the OAuth state and runs an OAuth attempt
	CompleteOauth(ctx context.Context, token, secret string) (domain.LoginResult, error)
}
