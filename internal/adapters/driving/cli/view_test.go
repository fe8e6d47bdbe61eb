package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

func TestTerminalView_State(t *testing.T) {
	var out bytes.Buffer
	view := NewTerminalView(&out, false)

	view.ShowFormView()
	view.ShowSignUpView()
	view.ShowCasButton(domain.CasButton{URL: "https://cas.example.com", State: "s"})
	view.ShowOAuthButton(domain.OAuthButton{Provider: domain.OAuthGitHub, URL: "https://github.test"})
	view.EnableOAuthView(false)
	view.DisableUserInput()

	state := view.State()
	assert.True(t, state.FormVisible)
	assert.True(t, state.SignUp)
	assert.Equal(t, "https://cas.example.com", state.Cas.URL)
	assert.Len(t, state.OAuth, 1)
	assert.True(t, state.OAuthEnabled)
	assert.False(t, state.InputEnabled)

	view.HideFormView()
	view.DisableOAuthView()
	view.EnableUserInput()
	state = view.State()
	assert.False(t, state.FormVisible)
	assert.False(t, state.OAuthEnabled)
	assert.True(t, state.InputEnabled)
}

func TestTerminalView_Messages(t *testing.T) {
	var out bytes.Buffer
	view := NewTerminalView(&out, false)

	view.AlertWrongUsernameOrEmail()
	view.AlertWrongPassword()
	view.ShowMessage("Unauthorized")
	view.ShowGenericErrorMessage()
	view.ShowNoInternetConnection()
	view.AlertNotRecommendedVersion()
	view.BlockAndAlertNotRequiredVersion()

	state := view.State()
	assert.Len(t, state.Messages, 7)
	assert.True(t, state.Blocked)
	assert.Contains(t, out.String(), "Unauthorized")
	assert.Contains(t, out.String(), "No internet connection.")
}

func TestTerminalView_Spinner(t *testing.T) {
	var out bytes.Buffer
	view := NewTerminalView(&out, true)

	view.ShowLoading()
	time.Sleep(20 * time.Millisecond)
	view.HideLoading()
	// second stop is harmless
	view.HideLoading()
}

func TestRenderAffordances(t *testing.T) {
	var out bytes.Buffer
	RenderAffordances(&out, "https://chat.example.com", ViewState{
		FormVisible:  true,
		Cas:          &domain.CasButton{URL: "https://cas.example.com/login?service=x"},
		OAuth:        []domain.OAuthButton{{Provider: domain.OAuthGitLab, URL: "https://gitlab.test/authorize"}},
		OAuthEnabled: true,
		Blocked:      true,
	})

	s := out.String()
	assert.Contains(t, s, "login password")
	assert.Contains(t, s, "https://cas.example.com/login?service=x")
	assert.Contains(t, s, "gitlab:")
	assert.Contains(t, s, "blocked")
}

func TestRenderAccounts(t *testing.T) {
	var out bytes.Buffer
	RenderAccounts(&out, nil)
	assert.Contains(t, out.String(), "No accounts found")

	out.Reset()
	RenderAccounts(&out, []*domain.Account{{
		ServerURL: "https://chat.example.com",
		Username:  "alice",
		AvatarURL: "https://chat.example.com/avatar/alice?format=jpeg",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}})
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "2024-05-01")
}

func TestTerminalNavigator(t *testing.T) {
	var out bytes.Buffer
	nav := NewTerminalNavigator(&out, "https://chat.example.com/")

	assert.False(t, nav.LoggedIn())
	nav.ToChatList()
	nav.ToSignUp()

	assert.True(t, nav.LoggedIn())
	assert.True(t, nav.SignedUp())
	assert.Contains(t, out.String(), "Logged in to https://chat.example.com")
	assert.Contains(t, out.String(), "https://chat.example.com/register")
}
