package domain

// CredentialKind identifies which login strategy a credential selects
type CredentialKind string

const (
	CredentialPassword CredentialKind = "password"
	CredentialCas      CredentialKind = "cas"
	CredentialOAuth    CredentialKind = "oauth"
)

// LoginCredential is the credential of a single login attempt.
// It is built fresh for every attempt and only ever passed by value.
// Implementations are PasswordCredential, CasCredential and OAuthCredential.
type LoginCredential interface {
	Kind() CredentialKind
	isLoginCredential()
}

// PasswordCredential carries a username or email with a password
type PasswordCredential struct {
	UsernameOrEmail string
	Password        string
}

// CasCredential carries the CAS correlation token
type CasCredential struct {
	Token string
}

// OAuthCredential carries the OAuth credential token and secret
type OAuthCredential struct {
	Token  string
	Secret string
}

func (PasswordCredential) Kind() CredentialKind { return CredentialPassword }
func (CasCredential) Kind() CredentialKind      { return CredentialCas }
func (OAuthCredential) Kind() CredentialKind    { return CredentialOAuth }

func (PasswordCredential) isLoginCredential() {}
func (CasCredential) isLoginCredential()      {}
func (OAuthCredential) isLoginCredential()    {}

// Validate checks the fields that can be rejected before any network call.
// The username check runs first so each field gets its own error.
func (c PasswordCredential) Validate() error {
	if IsBlank(c.UsernameOrEmail) {
		return ErrBlankUsername
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}
