package domain

import (
	"errors"
	"testing"
	"time"
)

func TestOAuthStateIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{
			name:      "expired state",
			expiresAt: time.Now().Add(-1 * time.Hour),
			expected:  true,
		},
		{
			name:      "valid state",
			expiresAt: time.Now().Add(1 * time.Hour),
			expected:  false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &OAuthState{ExpiresAt: tt.expiresAt}
			if state.IsExpired() != tt.expected {
				t.Errorf("expected IsExpired() = %v", tt.expected)
			}
		})
	}
}

func TestAttemptStateString(t *testing.T) {
	tests := []struct {
		state    AttemptState
		expected string
	}{
		{AttemptIdle, "idle"},
		{AttemptSubmitting, "submitting"},
		{AttemptSuccess, "success"},
		{AttemptFailed, "failed"},
		{AttemptState(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("AttemptState(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestLoginResultSucceeded(t *testing.T) {
	if !(LoginResult{State: AttemptSuccess}).Succeeded() {
		t.Error("expected success result to succeed")
	}
	if (LoginResult{State: AttemptSuccess, Err: errors.New("late")}).Succeeded() {
		t.Error("expected result with error not to succeed")
	}
	if (LoginResult{State: AttemptFailed}).Succeeded() {
		t.Error("expected failed result not to succeed")
	}
}
