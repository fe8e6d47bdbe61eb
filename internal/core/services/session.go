package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Post-login step names, reported in domain.SideEffectError.
const (
	StepSaveUsername      = "save username"
	StepSaveAccount       = "save account"
	StepSaveToken         = "save token"
	StepRegisterPushToken = "register push token"
)

// step is one post-login side effect
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps runs steps in order and stops at the first failure.
func runSteps(ctx context.Context, steps []step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return &domain.SideEffectError{Step: s.name, Err: err}
		}
		if err := s.run(ctx); err != nil {
			return &domain.SideEffectError{Step: s.name, Err: err}
		}
	}
	return nil
}

// SessionPersister stores the results of a successful login.
type SessionPersister struct {
	client    driven.ChatClient
	tokens    driven.TokenStore
	local     driven.LocalStore
	accounts  driven.AccountStore
	settings  domain.AuthSettings
	serverURL string
	logger    *slog.Logger
	now       func() time.Time
}

// SessionPersisterConfig holds dependencies for SessionPersister.
type SessionPersisterConfig struct {
	Client    driven.ChatClient
	Tokens    driven.TokenStore
	Local     driven.LocalStore
	Accounts  driven.AccountStore
	Settings  domain.AuthSettings
	ServerURL string
	Logger    *slog.Logger
}

// NewSessionPersister creates a new session persister.
func NewSessionPersister(cfg SessionPersisterConfig) *SessionPersister {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionPersister{
		client:    cfg.Client,
		tokens:    cfg.Tokens,
		local:     cfg.Local,
		accounts:  cfg.Accounts,
		settings:  cfg.Settings,
		serverURL: domain.NormalizeServerURL(cfg.ServerURL),
		logger:    logger,
		now:       time.Now,
	}
}

// Persist saves the username, the account and the token, then registers a
// stored push token if there is one.
func (p *SessionPersister) Persist(ctx context.Context, user *domain.User, token *domain.Token) (*domain.Session, error) {
	if user == nil || domain.IsBlank(user.Username) {
		return nil, domain.ErrProfileIncomplete
	}

	session := p.session(user.Username, token)
	account := p.account(session)

	err := runSteps(ctx, []step{
		{StepSaveUsername, func(ctx context.Context) error {
			return p.local.Save(ctx, domain.CurrentUsernameKey, user.Username)
		}},
		{StepSaveAccount, func(ctx context.Context) error {
			return p.accounts.Save(ctx, account)
		}},
		{StepSaveToken, func(ctx context.Context) error {
			return p.tokens.Save(ctx, p.serverURL, token)
		}},
		{StepRegisterPushToken, p.registerPushToken},
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (p *SessionPersister) registerPushToken(ctx context.Context) error {
	pushToken, err := p.local.Get(ctx, domain.PushTokenKey)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && pushToken == "") {
		p.logger.Debug("no push token stored, skipping registration", "server_url", p.serverURL)
		return nil
	}
	if err != nil {
		return err
	}
	return p.client.RegisterPushToken(ctx, pushToken)
}

func (p *SessionPersister) session(username string, token *domain.Token) *domain.Session {
	session := &domain.Session{
		ServerURL:          p.serverURL,
		Username:           username,
		AvatarThumbnailURL: domain.AvatarURL(p.serverURL, username),
	}
	if token != nil {
		session.Token = *token
	}
	if p.settings.Favicon != nil {
		icon := domain.ServerAssetURL(p.serverURL, *p.settings.Favicon)
		session.IconURL = &icon
	}
	if p.settings.WideTile != nil {
		logo := domain.ServerAssetURL(p.serverURL, *p.settings.WideTile)
		session.LogoURL = &logo
	}
	return session
}

func (p *SessionPersister) account(session *domain.Session) *domain.Account {
	return &domain.Account{
		ServerURL: session.ServerURL,
		IconURL:   session.IconURL,
		LogoURL:   session.LogoURL,
		Username:  session.Username,
		AvatarURL: session.AvatarThumbnailURL,
		CreatedAt: p.now(),
	}
}
