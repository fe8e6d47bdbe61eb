package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrBlankUsername indicates the username or email field is blank
	ErrBlankUsername = errors.New("username or email is blank")

	// ErrEmptyPassword indicates the password field is empty
	ErrEmptyPassword = errors.New("password is empty")

	// ErrNoConnectivity indicates no network reachability was detected
	ErrNoConnectivity = errors.New("no internet connection")

	// ErrUnauthorized indicates the server rejected the credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProfileIncomplete indicates the authenticated profile has no username
	ErrProfileIncomplete = errors.New("profile has no username")

	// ErrUnknownCredential indicates a credential variant the orchestrator cannot dispatch
	ErrUnknownCredential = errors.New("unknown credential type")

	// ErrUnsupportedProvider indicates an OAuth provider without an authorization flow
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")

	// ErrStateNotFound indicates an unknown, expired or already consumed correlation token
	ErrStateNotFound = errors.New("oauth state not found")

	// ErrNotAuthenticated indicates a call that needs a session was made before login
	ErrNotAuthenticated = errors.New("not authenticated")
)

// RemoteErrorKind categorizes failures returned by the chat server client.
type RemoteErrorKind string

const (
	// RemoteErrorAuth means the server rejected the request's credentials.
	RemoteErrorAuth RemoteErrorKind = "auth"
	// RemoteErrorTransport means the request never produced a server response.
	RemoteErrorTransport RemoteErrorKind = "transport"
	// RemoteErrorProtocol means the server responded with an unexpected status or body.
	RemoteErrorProtocol RemoteErrorKind = "protocol"
)

// RemoteError is returned by every ChatClient call that fails.
// Message is the human-readable text supplied by the server, if any.
type RemoteError struct {
	Kind       RemoteErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error: status %d", e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnauthorized) true for auth failures.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == RemoteErrorAuth
}

// SideEffectError reports a post-login step that failed after the server
// accepted the credentials.
type SideEffectError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *SideEffectError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the failed step's error.
func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// UserMessage returns the first non-empty server message carried by err.
func UserMessage(err error) (string, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message, true
	}
	return "", false
}
