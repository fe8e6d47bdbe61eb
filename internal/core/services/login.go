package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
	"github.com/custodia-labs/chat-login/internal/core/ports/driving"
)

// Ensure LoginOrchestrator implements LoginService
var _ driving.LoginService = (*LoginOrchestrator)(nil)

// DefaultCasSettleDelay is how long the server needs to finish the CAS callback
const DefaultCasSettleDelay = 3 * time.Second

const tracerName = "github.com/custodia-labs/chat-login/internal/core/services"

// LoginOrchestrator drives the login attempt state machine for one server.
//
// Attempts are serialized: an attempt started while another is in flight
// waits for it to finish. Every view and navigator call is dropped once
// Close has been called.
type LoginOrchestrator struct {
	client       driven.ChatClient
	settings     domain.AuthSettings
	serverURL    string
	view         driven.LoginView
	navigator    driven.Navigator
	connectivity driven.Connectivity
	gate         *CapabilityGate
	persister    *SessionPersister
	compat       *CompatibilityChecker
	sleep        func(ctx context.Context, d time.Duration) error
	casDelay     time.Duration
	keepSession  bool
	onTransition func(from, to domain.AttemptState)
	logger       *slog.Logger
	tracer       trace.Tracer

	scope *Scope

	// attemptMu is held for the whole of one attempt
	attemptMu sync.Mutex

	// uiMu serializes view and navigator calls and guards closed
	uiMu   sync.Mutex
	closed bool

	stateMu sync.RWMutex
	state   domain.AttemptState
}

// LoginConfig holds dependencies for LoginOrchestrator.
type LoginConfig struct {
	ServerURL    string
	Settings     domain.AuthSettings
	Client       driven.ChatClient
	View         driven.LoginView
	Navigator    driven.Navigator
	Connectivity driven.Connectivity
	Tokens       driven.TokenStore
	Local        driven.LocalStore
	Accounts     driven.AccountStore
	StateStore   driven.OAuthStateStore // Optional: tracks issued CAS and OAuth states
	URLBuilder   driven.OAuthURLBuilder

	RequiredVersion    string // default: DefaultRequiredServerVersion
	RecommendedVersion string // default: DefaultRecommendedServerVersion

	CasSettleDelay time.Duration                                 // default: DefaultCasSettleDelay
	Sleep          func(ctx context.Context, d time.Duration) error // default: timer honouring ctx

	// KeepSessionOnPersistFailure skips the remote logout that otherwise
	// follows a failed post-login step.
	KeepSessionOnPersistFailure bool

	// OnTransition is called on every attempt state change.
	OnTransition func(from, to domain.AttemptState)

	// Context bounds the lifetime of launched tasks (default: context.Background()).
	Context        context.Context
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

// NewLoginOrchestrator creates a new login orchestrator.
func NewLoginOrchestrator(cfg LoginConfig) *LoginOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	casDelay := cfg.CasSettleDelay
	if casDelay == 0 {
		casDelay = DefaultCasSettleDelay
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	serverURL := domain.NormalizeServerURL(cfg.ServerURL)
	logger = logger.With("server_url", serverURL)

	return &LoginOrchestrator{
		client:       cfg.Client,
		settings:     cfg.Settings,
		serverURL:    serverURL,
		view:         cfg.View,
		navigator:    cfg.Navigator,
		connectivity: cfg.Connectivity,
		gate: NewCapabilityGate(CapabilityGateConfig{
			Client:     cfg.Client,
			URLBuilder: cfg.URLBuilder,
			StateStore: cfg.StateStore,
			Logger:     logger,
		}),
		persister: NewSessionPersister(SessionPersisterConfig{
			Client:    cfg.Client,
			Tokens:    cfg.Tokens,
			Local:     cfg.Local,
			Accounts:  cfg.Accounts,
			Settings:  cfg.Settings,
			ServerURL: serverURL,
			Logger:    logger,
		}),
		compat:       NewCompatibilityChecker(cfg.Client, cfg.RequiredVersion, cfg.RecommendedVersion),
		sleep:        sleep,
		casDelay:     casDelay,
		keepSession:  cfg.KeepSessionOnPersistFailure,
		onTransition: cfg.OnTransition,
		logger:       logger,
		tracer:       tp.Tracer(tracerName),
		scope:        NewScope(cfg.Context),
	}
}

// SetupView applies the local affordances right away, then fetches the
// OAuth services and checks the server version in the background.
func (o *LoginOrchestrator) SetupView(ctx context.Context) {
	cfg, err := o.gate.Base(ctx, o.settings, o.serverURL)
	if err != nil {
		o.logger.Error("failed to set up login view", "error", err)
	}
	o.ui(func() {
		if cfg.ShowForm {
			o.view.ShowFormView()
		} else {
			o.view.HideFormView()
		}
		if cfg.ShowSignUp {
			o.view.ShowSignUpView()
		}
		if cfg.Cas != nil {
			o.view.ShowCasButton(*cfg.Cas)
		}
	})

	o.scope.Go(func(ctx context.Context) {
		oauth := o.gate.OAuth(ctx, o.settings, o.serverURL)
		o.ui(func() {
			if !oauth.Enabled {
				o.view.DisableOAuthView()
				return
			}
			for _, button := range oauth.Buttons {
				o.view.ShowOAuthButton(button)
			}
			o.view.EnableOAuthView(oauth.Expandable)
		})
	})

	o.scope.Go(o.checkServerVersion)
}

func (o *LoginOrchestrator) checkServerVersion(ctx context.Context) {
	compat, version, err := o.compat.Check(ctx)
	if err != nil {
		o.logger.Warn("server version check failed", "error", err)
		return
	}

	switch compat {
	case domain.Incompatible:
		o.logger.Warn("server version not supported", "version", version.String())
		o.ui(o.view.BlockAndAlertNotRequiredVersion)
	case domain.NotRecommended:
		o.logger.Info("server version not recommended", "version", version.String())
		o.ui(o.view.AlertNotRecommendedVersion)
	default:
		o.logger.Info("server version compatible", "version", version.String())
	}
}

// AuthenticateWithUserAndPassword validates the fields and starts a password attempt.
func (o *LoginOrchestrator) AuthenticateWithUserAndPassword(usernameOrEmail, password string) {
	credential := domain.PasswordCredential{UsernameOrEmail: usernameOrEmail, Password: password}
	if err := credential.Validate(); err != nil {
		o.alertInvalid(err)
		return
	}
	o.launch(credential)
}

// AuthenticateWithCas starts a CAS attempt
func (o *LoginOrchestrator) AuthenticateWithCas(token string) {
	o.launch(domain.CasCredential{Token: token})
}

// AuthenticateWithOauth starts an OAuth attempt
func (o *LoginOrchestrator) AuthenticateWithOauth(token, secret string) {
	o.launch(domain.OAuthCredential{Token: token, Secret: secret})
}

// SignUp navigates to registration
func (o *LoginOrchestrator) SignUp() {
	o.ui(o.navigator.ToSignUp)
}

func (o *LoginOrchestrator) launch(credential domain.LoginCredential) {
	if !o.scope.Go(func(ctx context.Context) { o.Login(ctx, credential) }) {
		o.logger.Debug("login screen closed, attempt dropped", "kind", credential.Kind())
	}
}

// Login runs one attempt to completion. The view is updated as the attempt
// progresses; the returned result carries the terminal state and error.
func (o *LoginOrchestrator) Login(ctx context.Context, credential domain.LoginCredential) domain.LoginResult {
	if credential == nil {
		return domain.LoginResult{State: domain.AttemptFailed, Err: domain.ErrUnknownCredential}
	}
	if password, ok := credential.(domain.PasswordCredential); ok {
		if err := password.Validate(); err != nil {
			o.alertInvalid(err)
			return domain.LoginResult{State: domain.AttemptIdle, Err: err}
		}
	}

	o.attemptMu.Lock()
	defer o.attemptMu.Unlock()

	// Abandon the attempt when either the caller or the screen goes away.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(o.scope.Context(), cancel)
	defer stop()
	if err := o.scope.Context().Err(); err != nil {
		return domain.LoginResult{State: domain.AttemptFailed, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return domain.LoginResult{State: domain.AttemptFailed, Err: err}
	}

	attemptID := uuid.NewString()
	logger := o.logger.With("attempt_id", attemptID, "kind", credential.Kind())

	ctx, span := o.tracer.Start(ctx, "login.attempt", trace.WithAttributes(
		attribute.String("login.attempt_id", attemptID),
		attribute.String("login.kind", string(credential.Kind())),
		attribute.String("chat.server_url", o.serverURL),
	))
	defer span.End()

	o.transition(domain.AttemptSubmitting)
	o.ui(func() {
		o.view.DisableUserInput()
		o.view.ShowLoading()
	})
	defer func() {
		o.ui(func() {
			o.view.HideLoading()
			o.view.EnableUserInput()
		})
		o.transition(domain.AttemptIdle)
	}()

	logger.Info("login attempt started")
	start := time.Now()

	session, err := o.attempt(ctx, credential, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.transition(domain.AttemptFailed)
		o.reportFailure(err)
		logger.Warn("login attempt failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return domain.LoginResult{State: domain.AttemptFailed, Err: err}
	}

	o.transition(domain.AttemptSuccess)
	o.ui(o.navigator.ToChatList)
	logger.Info("login attempt succeeded", "username", session.Username, "duration_ms", time.Since(start).Milliseconds())
	return domain.LoginResult{State: domain.AttemptSuccess, Session: session}
}

// attempt runs the network and persistence steps. A panic is recovered and
// returned as an error so the caller's cleanup still runs. Once the server
// has issued a token, a panic is rolled back like any post-login failure.
func (o *LoginOrchestrator) attempt(ctx context.Context, credential domain.LoginCredential, logger *slog.Logger) (session *domain.Session, err error) {
	exchanged := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error("login attempt panicked", "panic", r)
			session, err = nil, fmt.Errorf("login attempt panicked: %v", r)
			if exchanged {
				o.rollback(ctx, logger, err)
			}
		}
	}()

	if !o.connectivity.HasInternetAccess(ctx) {
		return nil, domain.ErrNoConnectivity
	}

	token, err := o.exchange(ctx, credential)
	if err != nil {
		return nil, err
	}
	exchanged = true

	user, err := o.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	session, err = o.persister.Persist(ctx, user, token)
	if err != nil {
		o.rollback(ctx, logger, err)
		return nil, err
	}
	return session, nil
}

// exchange trades the credential for a server token
func (o *LoginOrchestrator) exchange(ctx context.Context, credential domain.LoginCredential) (*domain.Token, error) {
	switch c := credential.(type) {
	case domain.PasswordCredential:
		switch {
		case domain.IsEmail(c.UsernameOrEmail):
			return o.client.LoginWithEmail(ctx, c.UsernameOrEmail, c.Password)
		case o.settings.LdapEnabled:
			return o.client.LoginWithLdap(ctx, c.UsernameOrEmail, c.Password)
		default:
			return o.client.Login(ctx, c.UsernameOrEmail, c.Password)
		}
	case domain.CasCredential:
		if err := o.sleep(ctx, o.casDelay); err != nil {
			return nil, err
		}
		return o.client.LoginWithCas(ctx, c.Token)
	case domain.OAuthCredential:
		return o.client.LoginWithOauth(ctx, c.Token, c.Secret)
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownCredential, credential)
	}
}

// rollback logs out the server session left behind by a failed post-login step
func (o *LoginOrchestrator) rollback(ctx context.Context, logger *slog.Logger, cause error) {
	if o.keepSession {
		logger.Warn("post-login step failed, server session kept", "error", cause)
		return
	}
	if err := o.client.Logout(ctx); err != nil {
		logger.Warn("failed to roll back server session", "error", err, "cause", cause)
		return
	}
	logger.Info("server session rolled back after post-login failure", "cause", cause)
}

func (o *LoginOrchestrator) alertInvalid(err error) {
	switch {
	case errors.Is(err, domain.ErrBlankUsername):
		o.ui(o.view.AlertWrongUsernameOrEmail)
	case errors.Is(err, domain.ErrEmptyPassword):
		o.ui(o.view.AlertWrongPassword)
	}
}

func (o *LoginOrchestrator) reportFailure(err error) {
	if errors.Is(err, domain.ErrNoConnectivity) {
		o.ui(o.view.ShowNoInternetConnection)
		return
	}
	if msg, ok := domain.UserMessage(err); ok {
		o.ui(func() { o.view.ShowMessage(msg) })
		return
	}
	o.ui(o.view.ShowGenericErrorMessage)
}

// ui runs fn unless the login screen has been closed or its context is done
func (o *LoginOrchestrator) ui(fn func()) {
	o.uiMu.Lock()
	defer o.uiMu.Unlock()
	if o.closed || o.scope.Context().Err() != nil {
		return
	}
	fn()
}

func (o *LoginOrchestrator) transition(to domain.AttemptState) {
	o.stateMu.Lock()
	from := o.state
	o.state = to
	o.stateMu.Unlock()

	if from == to {
		return
	}
	o.logger.Debug("login state changed", "from", from.String(), "to", to.String())
	if o.onTransition != nil {
		o.onTransition(from, to)
	}
}

// State returns the current attempt state
func (o *LoginOrchestrator) State() domain.AttemptState {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// Wait blocks until every launched task has finished
func (o *LoginOrchestrator) Wait() {
	o.scope.Wait()
}

// Close cancels pending work and waits for it. No view call happens afterwards.
func (o *LoginOrchestrator) Close() {
	o.uiMu.Lock()
	o.closed = true
	o.uiMu.Unlock()

	o.scope.Close()
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return nil
}
