package mocks

import (
	"sync"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Ensure MockLoginView and MockNavigator implement their ports
var (
	_ driven.LoginView = (*MockLoginView)(nil)
	_ driven.Navigator = (*MockNavigator)(nil)
)

// MockLoginView records every directive as "view.<Method>"
type MockLoginView struct {
	Log *CallLog

	mu           sync.Mutex
	casButton    *domain.CasButton
	oauthButtons []domain.OAuthButton
	messages     []string
}

// NewMockLoginView creates a new MockLoginView recording into log (may be nil)
func NewMockLoginView(log *CallLog) *MockLoginView {
	if log == nil {
		log = NewCallLog()
	}
	return &MockLoginView{Log: log}
}

func (m *MockLoginView) ShowFormView() { m.Log.Record("view.ShowFormView") }
func (m *MockLoginView) HideFormView() { m.Log.Record("view.HideFormView") }
func (m *MockLoginView) ShowSignUpView() { m.Log.Record("view.ShowSignUpView") }

func (m *MockLoginView) ShowCasButton(button domain.CasButton) {
	m.Log.Record("view.ShowCasButton")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.casButton = &button
}

func (m *MockLoginView) ShowOAuthButton(button domain.OAuthButton) {
	m.Log.Record("view.ShowOAuthButton:" + string(button.Provider))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthButtons = append(m.oauthButtons, button)
}

func (m *MockLoginView) EnableOAuthView(expandable bool) {
	if expandable {
		m.Log.Record("view.EnableOAuthView:expandable")
		return
	}
	m.Log.Record("view.EnableOAuthView")
}

func (m *MockLoginView) DisableOAuthView() { m.Log.Record("view.DisableOAuthView") }
func (m *MockLoginView) DisableUserInput() { m.Log.Record("view.DisableUserInput") }
func (m *MockLoginView) EnableUserInput() { m.Log.Record("view.EnableUserInput") }
func (m *MockLoginView) ShowLoading() { m.Log.Record("view.ShowLoading") }
func (m *MockLoginView) HideLoading() { m.Log.Record("view.HideLoading") }
func (m *MockLoginView) AlertWrongPassword() { m.Log.Record("view.AlertWrongPassword") }

func (m *MockLoginView) AlertWrongUsernameOrEmail() {
	m.Log.Record("view.AlertWrongUsernameOrEmail")
}

func (m *MockLoginView) ShowMessage(message string) {
	m.Log.Record("view.ShowMessage")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *MockLoginView) ShowGenericErrorMessage() { m.Log.Record("view.ShowGenericErrorMessage") }
func (m *MockLoginView) ShowNoInternetConnection() { m.Log.Record("view.ShowNoInternetConnection") }

func (m *MockLoginView) AlertNotRecommendedVersion() {
	m.Log.Record("view.AlertNotRecommendedVersion")
}

func (m *MockLoginView) BlockAndAlertNotRequiredVersion() {
	m.Log.Record("view.BlockAndAlertNotRequiredVersion")
}

// CasButton returns the last CAS button shown
func (m *MockLoginView) CasButton() *domain.CasButton {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.casButton
}

// OAuthButtons returns the OAuth buttons shown so far
func (m *MockLoginView) OAuthButtons() []domain.OAuthButton {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OAuthButton(nil), m.oauthButtons...)
}

// Messages returns the messages shown so far
func (m *MockLoginView) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// MockNavigator records navigation as "navigator.<Method>"
type MockNavigator struct {
	Log *CallLog
}

// NewMockNavigator creates a new MockNavigator recording into log (may be nil)
func NewMockNavigator(log *CallLog) *MockNavigator {
	if log == nil {
		log = NewCallLog()
	}
	return &MockNavigator{Log: log}
}

func (m *MockNavigator) ToChatList() { m.Log.Record("navigator.ToChatList") }
func (m *MockNavigator) ToSignUp() { m.Log.Record("navigator.ToSignUp") }
