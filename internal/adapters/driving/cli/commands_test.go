package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chat-login/internal/config"
	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven/mocks"
)

const testServerURL = "https://chat.example.com"

type fakePrompter struct {
	input    string
	password string
	asked    []string
}

func (p *fakePrompter) Input(title string) (string, error) {
	p.asked = append(p.asked, title)
	return p.input, nil
}

func (p *fakePrompter) Password(title string) (string, error) {
	p.asked = append(p.asked, title)
	return p.password, nil
}

type cliFixture struct {
	log      *mocks.CallLog
	client   *mocks.MockChatClient
	accounts *mocks.MockAccountStore
	tokens   *mocks.MockTokenStore
	states   *mocks.MockOAuthStateStore
	prompter *fakePrompter
	out      *bytes.Buffer
	settings *domain.AuthSettings
	openErr  error
	closed   int
}

func newCLIFixture() *cliFixture {
	log := mocks.NewCallLog()
	f := &cliFixture{
		log:      log,
		client:   mocks.NewMockChatClient(log),
		accounts: mocks.NewMockAccountStore(log),
		tokens:   mocks.NewMockTokenStore(log),
		states:   mocks.NewMockOAuthStateStore(),
		prompter: &fakePrompter{},
		out:      &bytes.Buffer{},
		settings: &domain.AuthSettings{LoginFormEnabled: true},
	}
	f.client.PublicSettingsFn = func(ctx context.Context) (*domain.AuthSettings, error) {
		return f.settings, nil
	}
	return f
}

func (f *cliFixture) run(args ...string) error {
	cfg := &config.Config{
		ServerURL:      testServerURL,
		CasSettleDelay: time.Millisecond,
	}
	root := NewRootCommand(Options{
		Version:  "1.2.3",
		Config:   cfg,
		Out:      f.out,
		Prompter: f.prompter,
		Open: func(ctx context.Context, cfg *config.Config, serverURL string) (*Env, error) {
			if f.openErr != nil {
				return nil, f.openErr
			}
			return &Env{
				Client:       f.client,
				Connectivity: mocks.NewMockConnectivity(),
				URLBuilder:   mocks.NewMockOAuthURLBuilder(),
				Tokens:       f.tokens,
				Local:        mocks.NewMockLocalStore(f.log),
				Accounts:     f.accounts,
				States:       f.states,
				Close: func() error {
					f.closed++
					return nil
				},
			}, nil
		},
	})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestVersionCommand(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("version"))
	assert.Contains(t, f.out.String(), "chat-login 1.2.3")
}

func TestLoginPassword_Flags(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("login", "password", "--user", "alice", "--password", "secret"))

	assert.Contains(t, f.out.String(), "Logged in to "+testServerURL)
	assert.Equal(t, 1, f.log.Count("client.Login"))
	assert.Equal(t, 1, f.tokens.Count())
	assert.Empty(t, f.prompter.asked)
	assert.Equal(t, 1, f.closed)
}

func TestLoginPassword_EmailUsesEmailLogin(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("login", "password", "-u", "alice@example.com", "-p", "secret"))
	assert.Equal(t, 1, f.log.Count("client.LoginWithEmail"))
}

func TestLoginPassword_Prompts(t *testing.T) {
	f := newCLIFixture()
	f.prompter.input = "alice"
	f.prompter.password = "secret"

	require.NoError(t, f.run("login", "password"))
	assert.Equal(t, []string{"Username or email", "Password"}, f.prompter.asked)
}

func TestLoginPassword_NoInput(t *testing.T) {
	f := newCLIFixture()

	err := f.run("--no-input", "login", "password", "--user", "alice")
	assert.ErrorIs(t, err, errNoPrompt)
	assert.Zero(t, f.log.Count("client.Login"))
}

func TestLoginPassword_Rejected(t *testing.T) {
	f := newCLIFixture()
	f.client.LoginFn = func(ctx context.Context, username, password string) (*domain.Token, error) {
		return nil, &domain.RemoteError{Kind: domain.RemoteErrorAuth, StatusCode: 401, Message: "Unauthorized"}
	}

	err := f.run("login", "password", "-u", "alice", "-p", "bad")
	assert.ErrorIs(t, err, errLoginFailed)
	assert.Contains(t, f.out.String(), "Unauthorized")
	assert.Zero(t, f.tokens.Count())
}

func TestLoginPassword_FormDisabled(t *testing.T) {
	f := newCLIFixture()
	f.settings.LoginFormEnabled = false

	err := f.run("login", "password", "-u", "alice", "-p", "secret")
	assert.ErrorIs(t, err, errFormDisabled)
}

func TestLoginPassword_BlockedVersion(t *testing.T) {
	f := newCLIFixture()
	f.client.ServerInfoFn = func(ctx context.Context) (*domain.ServerInfo, error) {
		return &domain.ServerInfo{Version: "0.50.0"}, nil
	}

	err := f.run("login", "password", "-u", "alice", "-p", "secret")
	assert.ErrorIs(t, err, errBlocked)
	assert.Zero(t, f.log.Count("client.Login"))
}

func TestLoginCas(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("login", "cas", "--token", "cas-token"))
	assert.Equal(t, 1, f.log.Count("client.LoginWithCas"))
}

func TestLoginCas_RequiresToken(t *testing.T) {
	f := newCLIFixture()

	assert.Error(t, f.run("login", "cas"))
	assert.Zero(t, f.log.Count("client.PublicSettings"))
}

func TestLoginOauth(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("login", "oauth", "--token", "tok", "--secret", "sec"))
	assert.Equal(t, 1, f.log.Count("client.LoginWithOauth"))
}

func TestSetupCommand(t *testing.T) {
	f := newCLIFixture()
	f.settings = &domain.AuthSettings{
		LoginFormEnabled:    true,
		RegistrationEnabled: true,
		CasEnabled:          true,
		CasLoginURL:         "https://cas.example.com/login",
		OAuth:               map[domain.OAuthProvider]bool{domain.OAuthGitHub: true},
	}
	f.client.SettingsOauthFn = func(ctx context.Context) (domain.OAuthServices, error) {
		return domain.OAuthServices{{"name": "github", "appId": "gh-id"}}, nil
	}

	require.NoError(t, f.run("setup"))

	out := f.out.String()
	assert.Contains(t, out, "Login options for "+testServerURL)
	assert.Contains(t, out, "https://cas.example.com/login?service=")
	assert.Contains(t, out, "https://github.test/authorize?client_id=gh-id")
	assert.Contains(t, out, "registration is open")
	assert.Len(t, f.states.Tokens(domain.CredentialCas), 1)
	assert.Len(t, f.states.Tokens(domain.CredentialOAuth), 1)
}

func TestSignUpCommand(t *testing.T) {
	f := newCLIFixture()

	require.NoError(t, f.run("signup"))
	assert.Contains(t, f.out.String(), testServerURL+"/register")
}

func TestAccountsCommand(t *testing.T) {
	f := newCLIFixture()
	require.NoError(t, f.accounts.Save(context.Background(), &domain.Account{
		ServerURL: testServerURL,
		Username:  "alice",
		AvatarURL: testServerURL + "/avatar/alice?format=jpeg",
	}))

	require.NoError(t, f.run("accounts"))
	assert.Contains(t, f.out.String(), "alice")
}

func TestNoServer(t *testing.T) {
	f := newCLIFixture()
	root := NewRootCommand(Options{Out: f.out, Open: func(ctx context.Context, cfg *config.Config, serverURL string) (*Env, error) {
		t.Fatal("open must not be called without a server")
		return nil, nil
	}})
	root.SetArgs([]string{"setup"})

	assert.ErrorIs(t, root.ExecuteContext(context.Background()), errNoServer)
}

func TestOpenError(t *testing.T) {
	f := newCLIFixture()
	f.openErr = errors.New("db locked")

	err := f.run("setup")
	assert.ErrorContains(t, err, "db locked")
}

func TestServerFlagOverridesConfig(t *testing.T) {
	f := newCLIFixture()
	var opened string
	root := NewRootCommand(Options{
		Config: &config.Config{ServerURL: testServerURL},
		Out:    f.out,
		Open: func(ctx context.Context, cfg *config.Config, serverURL string) (*Env, error) {
			opened = serverURL
			return nil, errors.New("stop")
		},
	})
	root.SetArgs([]string{"--server", "https://other.example.com/", "accounts"})

	assert.Error(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "https://other.example.com", opened)
}
