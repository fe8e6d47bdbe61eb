package driven

import "github.com/custodia-labs/chat-login/internal/core/domain"

// LoginView is the presentation contract driven by the login orchestrator.
// Calls are never made after the orchestrator's scope has been torn down.
type LoginView interface {
	// Login form
	ShowFormView()
	HideFormView()
	ShowSignUpView()

	// CAS and OAuth affordances
	ShowCasButton(button domain.CasButton)
	ShowOAuthButton(button domain.OAuthButton)
	EnableOAuthView(expandable bool)
	DisableOAuthView()

	// Attempt lifecycle
	DisableUserInput()
	EnableUserInput()
	ShowLoading()
	HideLoading()

	// Validation and failure signals
	AlertWrongUsernameOrEmail()
	AlertWrongPassword()
	ShowMessage(message string)
	ShowGenericErrorMessage()
	ShowNoInternetConnection()

	// Server compatibility
	AlertNotRecommendedVersion()
	BlockAndAlertNotRequiredVersion()
}

// Navigator hands control to the next screen
type Navigator interface {
	ToChatList()
	ToSignUp()
}
