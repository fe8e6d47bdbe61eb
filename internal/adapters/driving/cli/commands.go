package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	httpadapter "github.com/custodia-labs/chat-login/internal/adapters/driving/http"
	"github.com/custodia-labs/chat-login/internal/config"
	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
	"github.com/custodia-labs/chat-login/internal/core/services"
	"github.com/custodia-labs/chat-login/internal/worker"
)

var (
	errNoServer     = errors.New("no chat server: pass --server or set CHAT_SERVER_URL")
	errLoginFailed  = errors.New("login failed")
	errBlocked      = errors.New("server version is not supported")
	errFormDisabled = errors.New("password login is disabled on this server")
)

// Env is the wiring for one chat server
type Env struct {
	Client       driven.ChatClient
	Connectivity driven.Connectivity
	URLBuilder   driven.OAuthURLBuilder
	Tokens       driven.TokenStore
	Local        driven.LocalStore
	Accounts     driven.AccountStore
	States       driven.OAuthStateStore

	// Cleaner removes expired states while serving (optional)
	Cleaner worker.StateCleaner
	// Store is pinged by the callback server's readiness check (optional)
	Store httpadapter.Pinger
	// Close releases the env's resources (optional)
	Close func() error
}

// EnvOpener builds the Env for a server
type EnvOpener func(ctx context.Context, cfg *config.Config, serverURL string) (*Env, error)

// Options configures the command tree
type Options struct {
	Version  string
	Config   *config.Config
	Open     EnvOpener
	Out      io.Writer
	Prompter Prompter
	Logger   *slog.Logger
	Spinner  bool
}

type app struct {
	opts      Options
	serverURL string
	noInput   bool
}

// NewRootCommand builds the chat-login command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Prompter == nil {
		opts.Prompter = HuhPrompter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "chat-login",
		Short:         "Log in to a Rocket.Chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
		root.SetErr(opts.Out)
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "chat server URL (default $CHAT_SERVER_URL)")
	root.PersistentFlags().BoolVar(&a.noInput, "no-input", false, "never prompt for missing values")

	root.AddCommand(
		a.loginCommand(),
		a.setupCommand(),
		a.signUpCommand(),
		a.accountsCommand(),
		a.serveCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) server() (string, error) {
	server := a.serverURL
	if server == "" {
		server = a.opts.Config.ServerURL
	}
	server = domain.NormalizeServerURL(server)
	if server == "" {
		return "", errNoServer
	}
	return server, nil
}

func (a *app) prompter() Prompter {
	if a.noInput {
		return noPrompter{}
	}
	return a.opts.Prompter
}

// session is one login screen bound to a server
type session struct {
	serverURL string
	env       *Env
	view      *TerminalView
	navigator *TerminalNavigator
	login     *services.LoginOrchestrator
}

func (s *session) close() {
	s.login.Close()
	if s.env.Close != nil {
		_ = s.env.Close()
	}
}

func (a *app) open(cmd *cobra.Command) (*session, error) {
	serverURL, err := a.server()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := a.opts.Open(ctx, a.opts.Config, serverURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", serverURL, err)
	}
	settings, err := env.Client.PublicSettings(ctx)
	if err != nil {
		if env.Close != nil {
			_ = env.Close()
		}
		return nil, fmt.Errorf("fetch login settings: %w", err)
	}

	out := cmd.OutOrStdout()
	view := NewTerminalView(out, a.opts.Spinner)
	navigator := NewTerminalNavigator(out, serverURL)
	cfg := a.opts.Config

	login := services.NewLoginOrchestrator(services.LoginConfig{
		ServerURL:                   serverURL,
		Settings:                    *settings,
		Client:                      env.Client,
		View:                        view,
		Navigator:                   navigator,
		Connectivity:                env.Connectivity,
		Tokens:                      env.Tokens,
		Local:                       env.Local,
		Accounts:                    env.Accounts,
		StateStore:                  env.States,
		URLBuilder:                  env.URLBuilder,
		RequiredVersion:             cfg.RequiredVersion,
		RecommendedVersion:          cfg.RecommendedVersion,
		CasSettleDelay:              cfg.CasSettleDelay,
		KeepSessionOnPersistFailure: cfg.KeepSessionOnError,
		Context:                     ctx,
		Logger:                      a.opts.Logger,
	})

	return &session{
		serverURL: serverURL,
		env:       env,
		view:      view,
		navigator: navigator,
		login:     login,
	}, nil
}

// prepare sets up the view and waits for the background checks
func (s *session) prepare(ctx context.Context) error {
	s.login.SetupView(ctx)
	s.login.Wait()
	if s.view.State().Blocked {
		return errBlocked
	}
	return nil
}

func (s *session) result() error {
	s.login.Wait()
	if !s.navigator.LoggedIn() {
		return errLoginFailed
	}
	return nil
}

func (a *app) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a password, CAS or OAuth credential",
	}
	cmd.AddCommand(a.loginPasswordCommand(), a.loginCasCommand(), a.loginOauthCommand())
	return cmd
}

func (a *app) loginPasswordCommand() *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Log in with a username or email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.prepare(cmd.Context()); err != nil {
				return err
			}
			if !s.view.State().FormVisible {
				return errFormDisabled
			}

			if strings.TrimSpace(user) == "" {
				if user, err = a.prompter().Input("Username or email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompter().Password("Password"); err != nil {
					return err
				}
			}

			s.login.AuthenticateWithUserAndPassword(user, password)
			return s.result()
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (a *app) loginCasCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "cas",
		Short: "Log in with a CAS credential token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			s.login.AuthenticateWithCas(token)
			return s.result()
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "CAS credential token")
	return cmd
}

func (a *app) loginOauthCommand() *cobra.Command {
	var token, secret string
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Log in with an OAuth credential token and secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" || secret == "" {
				return errors.New("--token and --secret are required")
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			s.login.AuthenticateWithOauth(token, secret)
			return s.result()
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "OAuth credential token")
	cmd.Flags().StringVar(&secret, "secret", "", "OAuth credential secret")
	return cmd
}

func (a *app) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Show the login options the server offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			err = s.prepare(cmd.Context())
			RenderAffordances(cmd.OutOrStdout(), s.serverURL, s.view.State())
			return err
		},
	}
}

func (a *app) signUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Show where to create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			s.login.SignUp()
			return nil
		},
	}
}

func (a *app) accountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, err := a.server()
			if err != nil {
				return err
			}
			env, err := a.opts.Open(cmd.Context(), a.opts.Config, serverURL)
			if err != nil {
				return err
			}
			if env.Close != nil {
				defer env.Close()
			}

			accounts, err := env.Accounts.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list accounts: %w", err)
			}
			RenderAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Issue CAS and OAuth logins and wait for their callbacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			if err := s.prepare(ctx); err != nil {
				return err
			}
			RenderAffordances(cmd.OutOrStdout(), s.serverURL, s.view.State())

			if s.env.Cleaner != nil {
				janitor := worker.NewJanitor(worker.JanitorConfig{
					Cleaner:  s.env.Cleaner,
					Interval: a.opts.Config.StateCleanup,
					Logger:   a.opts.Logger,
				})
				janitor.Start(ctx)
				defer janitor.Stop()
			}

			callbacks := services.NewCallbackService(s.login, s.env.States, s.serverURL, a.opts.Logger)
			cfg := a.opts.Config
			serverCfg := httpadapter.DefaultConfig()
			if cfg.CallbackHost != "" {
				serverCfg.Host = cfg.CallbackHost
			}
			if cfg.CallbackPort != 0 {
				serverCfg.Port = cfg.CallbackPort
			}
			serverCfg.Version = a.opts.Version
			serverCfg.ServerURL = s.serverURL
			serverCfg.AllowedOrigins = cfg.CallbackOrigins
			serverCfg.Logger = a.opts.Logger

			server := httpadapter.NewServer(serverCfg, callbacks, s.env.Store)
			return server.Start(ctx)
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "chat-login "+a.opts.Version)
		},
	}
}
