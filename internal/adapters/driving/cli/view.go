// Package cli drives the login flow from a terminal.
package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.LoginView = (*TerminalView)(nil)
	_ driven.Navigator = (*TerminalNavigator)(nil)
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

// ViewState is what the view has been told to offer so far
type ViewState struct {
	FormVisible  bool
	SignUp       bool
	Cas          *domain.CasButton
	OAuth        []domain.OAuthButton
	OAuthEnabled bool
	Expandable   bool
	Blocked      bool
	InputEnabled bool
	Messages     []string
}

// TerminalView renders login view calls as terminal lines
type TerminalView struct {
	out     io.Writer
	spinner *spinner.Spinner

	mu    sync.Mutex
	state ViewState
}

// NewTerminalView creates a view writing to out. A spinner is shown while
// loading when withSpinner is set.
func NewTerminalView(out io.Writer, withSpinner bool) *TerminalView {
	v := &TerminalView{out: out, state: ViewState{InputEnabled: true}}
	if withSpinner {
		v.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		v.spinner.Suffix = " Signing in..."
	}
	return v
}

// State returns a copy of the current view state
func (v *TerminalView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := v.state
	state.OAuth = append([]domain.OAuthButton(nil), v.state.OAuth...)
	state.Messages = append([]string(nil), v.state.Messages...)
	return state
}

func (v *TerminalView) printf(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(v.out, style.Render(fmt.Sprintf(format, args...)))
}

func (v *TerminalView) message(style lipgloss.Style, msg string) {
	v.state.Messages = append(v.state.Messages, msg)
	v.printf(style, "%s", msg)
}

func (v *TerminalView) ShowFormView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.FormVisible = true
}

func (v *TerminalView) HideFormView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.FormVisible = false
}

func (v *TerminalView) ShowSignUpView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.SignUp = true
}

func (v *TerminalView) ShowCasButton(button domain.CasButton) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Cas = &button
}

func (v *TerminalView) ShowOAuthButton(button domain.OAuthButton) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.OAuth = append(v.state.OAuth, button)
}

func (v *TerminalView) EnableOAuthView(expandable bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.OAuthEnabled = true
	v.state.Expandable = expandable
}

func (v *TerminalView) DisableOAuthView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.OAuthEnabled = false
}

func (v *TerminalView) DisableUserInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.InputEnabled = false
}

func (v *TerminalView) EnableUserInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.InputEnabled = true
}

func (v *TerminalView) ShowLoading() {
	if v.spinner != nil {
		v.spinner.Start()
	}
}

func (v *TerminalView) HideLoading() {
	if v.spinner != nil {
		v.spinner.Stop()
	}
}

func (v *TerminalView) AlertWrongUsernameOrEmail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(errorStyle, "Enter a username or email address.")
}

func (v *TerminalView) AlertWrongPassword() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(errorStyle, "Enter a password.")
}

func (v *TerminalView) ShowMessage(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(errorStyle, message)
}

func (v *TerminalView) ShowGenericErrorMessage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(errorStyle, "Something went wrong. Try again.")
}

func (v *TerminalView) ShowNoInternetConnection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(errorStyle, "No internet connection.")
}

func (v *TerminalView) AlertNotRecommendedVersion() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message(warnStyle, "This server runs an older version. Some features may not work.")
}

func (v *TerminalView) BlockAndAlertNotRequiredVersion() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Blocked = true
	v.message(errorStyle, "This server version is not supported. Ask your administrator to upgrade.")
}

// RenderAffordances prints the login options the view was given
func RenderAffordances(w io.Writer, serverURL string, state ViewState) {
	fmt.Fprintln(w, titleStyle.Render("Login options for "+serverURL))
	if state.FormVisible {
		fmt.Fprintln(w, labelStyle.Render("password:"), "chat-login login password --user <name>")
	}
	if state.SignUp {
		fmt.Fprintln(w, labelStyle.Render("sign up:"), "registration is open")
	}
	if state.Cas != nil {
		fmt.Fprintln(w, labelStyle.Render("cas:"), state.Cas.URL)
	}
	if state.OAuthEnabled {
		for _, button := range state.OAuth {
			fmt.Fprintln(w, labelStyle.Render(string(button.Provider)+":"), button.URL)
		}
	}
	if state.Blocked {
		fmt.Fprintln(w, errorStyle.Render("login is blocked until the server is upgraded"))
	}
}

// TerminalNavigator prints navigation hand-offs and remembers the last one
type TerminalNavigator struct {
	out       io.Writer
	serverURL string

	mu       sync.Mutex
	loggedIn bool
	signUp   bool
}

// NewTerminalNavigator creates a navigator writing to out
func NewTerminalNavigator(out io.Writer, serverURL string) *TerminalNavigator {
	return &TerminalNavigator{out: out, serverURL: domain.NormalizeServerURL(serverURL)}
}

// ToChatList reports a completed login
func (n *TerminalNavigator) ToChatList() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loggedIn = true
	fmt.Fprintln(n.out, successStyle.Render("Logged in to "+n.serverURL))
}

// ToSignUp points at the server's registration page
func (n *TerminalNavigator) ToSignUp() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signUp = true
	fmt.Fprintln(n.out, "Create an account at "+n.serverURL+"/register")
}

// LoggedIn reports whether ToChatList was called
func (n *TerminalNavigator) LoggedIn() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loggedIn
}

// SignedUp reports whether ToSignUp was called
func (n *TerminalNavigator) SignedUp() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.signUp
}
