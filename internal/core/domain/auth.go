package domain

import "time"

// Token is the session token issued by the chat server on login
type Token struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}

// User is the authenticated user's profile as returned by the server
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Account is the locally persisted record of a logged-in server account
type Account struct {
	ServerURL string    `json:"server_url"`
	IconURL   *string   `json:"icon_url,omitempty"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the durable result of a successful login
type Session struct {
	ServerURL          string  `json:"server_url"`
	Token              Token   `json:"token"`
	Username           string  `json:"username"`
	AvatarThumbnailURL string  `json:"avatar_thumbnail_url"`
	IconURL            *string `json:"icon_url,omitempty"`
	LogoURL            *string `json:"logo_url,omitempty"`
}

// OAuthState is a single-use correlation token issued at view setup and
// matched against the CAS or OAuth callback.
type OAuthState struct {
	CredentialToken string         `json:"credential_token"`
	Kind            CredentialKind `json:"kind"`
	ServerURL       string         `json:"server_url"`
	CreatedAt       time.Time      `json:"created_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
}

// IsExpired checks if the state has expired
func (s *OAuthState) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Keys used with the local key-value store
const (
	CurrentUsernameKey = "current_username"
	PushTokenKey       = "push_token"
)

// AttemptState is the state of the login attempt state machine
type AttemptState int

const (
	AttemptIdle AttemptState = iota
	AttemptSubmitting
	AttemptSuccess
	AttemptFailed
)

// String returns the string representation of the attempt state.
func (s AttemptState) String() string {
	switch s {
	case AttemptIdle:
		return "idle"
	case AttemptSubmitting:
		return "submitting"
	case AttemptSuccess:
		return "success"
	case AttemptFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginResult is the outcome of one login attempt
type LoginResult struct {
	State   AttemptState
	Session *Session
	Err     error
}

// Succeeded reports whether the attempt completed every step
func (r LoginResult) Succeeded() bool {
	return r.State == AttemptSuccess && r.Err == nil
}
