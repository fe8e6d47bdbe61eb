// Package rocketchat implements the chat server client over the Rocket.Chat REST API.
package rocketchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/domain"
	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatClient = (*Client)(nil)

const (
	// DefaultTimeout bounds a single HTTP request
	DefaultTimeout = 30 * time.Second

	// DefaultAppName is sent with push token registrations
	DefaultAppName = "chat-login"

	// DefaultMaxRetries is the number of retries for idempotent reads on 5xx
	DefaultMaxRetries = 2
)

// Config holds client configuration
type Config struct {
	ServerURL  string
	HTTPClient *http.Client
	Timeout    time.Duration
	AppName    string
	// MaxRetries for GET requests. Zero uses DefaultMaxRetries, negative disables retries.
	MaxRetries int
	Logger     *slog.Logger
}

// Client talks to one chat server. It remembers the token returned by the
// last successful login for the calls that need a session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	appName    string
	maxRetries int
	logger     *slog.Logger

	mu    sync.RWMutex
	token *domain.Token
}

// NewClient creates a new chat server client
func NewClient(cfg Config) (*Client, error) {
	baseURL := domain.NormalizeServerURL(cfg.ServerURL)
	if baseURL == "" {
		return nil, fmt.Errorf("server url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	appName := cfg.AppName
	if appName == "" {
		appName = DefaultAppName
	}
	maxRetries := cfg.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		appName:    appName,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// ServerURL returns the normalized server URL
func (c *Client) ServerURL() string {
	return c.baseURL
}

// Token returns the session token of the last successful login, or nil
func (c *Client) Token() *domain.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil
	}
	token := *c.token
	return &token
}

// SetToken sets the session token, for resuming a stored session
func (c *Client) SetToken(token *domain.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == nil {
		c.token = nil
		return
	}
	t := *token
	c.token = &t
}

// LoginWithEmail authenticates with an email address and password
func (c *Client) LoginWithEmail(ctx context.Context, email, password string) (*domain.Token, error) {
	return c.login(ctx, map[string]any{
		"user":     email,
		"password": password,
	})
}

// LoginWithLdap authenticates a username and password against the server's LDAP backend
func (c *Client) LoginWithLdap(ctx context.Context, username, password string) (*domain.Token, error) {
	return c.login(ctx, map[string]any{
		"ldap":        true,
		"username":    username,
		"ldapPass":    password,
		"ldapOptions": map[string]any{},
	})
}

// Login authenticates with a plain username and password
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	return c.login(ctx, map[string]any{
		"username": username,
		"password": password,
	})
}

// LoginWithCas exchanges a CAS correlation token
func (c *Client) LoginWithCas(ctx context.Context, casToken string) (*domain.Token, error) {
	return c.login(ctx, map[string]any{
		"cas": map[string]string{"credentialToken": casToken},
	})
}

// LoginWithOauth exchanges an OAuth credential token and secret
func (c *Client) LoginWithOauth(ctx context.Context, credentialToken, credentialSecret string) (*domain.Token, error) {
	return c.login(ctx, map[string]any{
		"oauth": map[string]string{
			"credentialToken":  credentialToken,
			"credentialSecret": credentialSecret,
		},
	})
}

type loginResponse struct {
	Status string `json:"status"`
	Data   struct {
		AuthToken string `json:"authToken"`
		UserID    string `json:"userId"`
	} `json:"data"`
}

func (c *Client) login(ctx context.Context, body map[string]any) (*domain.Token, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/login", body, false, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data.AuthToken == "" || resp.Data.UserID == "" {
		return nil, &domain.RemoteError{
			Kind: domain.RemoteErrorProtocol,
			Err:  fmt.Errorf("login response missing token"),
		}
	}

	token := &domain.Token{UserID: resp.Data.UserID, AuthToken: resp.Data.AuthToken}
	c.SetToken(token)
	return token, nil
}

type meResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Emails   []struct {
		Address string `json:"address"`
	} `json:"emails"`
}

// Me returns the authenticated user's profile
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, true, &resp); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       resp.ID,
		Username: resp.Username,
		Name:     resp.Name,
	}
	if len(resp.Emails) > 0 {
		user.Email = resp.Emails[0].Address
	}
	return user, nil
}

// Logout invalidates the current server session
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/logout", nil, true, nil); err != nil {
		return err
	}
	c.SetToken(nil)
	return nil
}

type infoResponse struct {
	Version string `json:"version"`
	Info    *struct {
		Version string `json:"version"`
	} `json:"info"`
}

// ServerInfo returns the public server information
func (c *Client) ServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	var resp infoResponse
	if err := c.do(ctx, http.MethodGet, "/api/info", nil, false, &resp); err != nil {
		return nil, err
	}

	version := resp.Version
	if version == "" && resp.Info != nil {
		version = resp.Info.Version
	}
	if version == "" {
		return nil, &domain.RemoteError{
			Kind: domain.RemoteErrorProtocol,
			Err:  fmt.Errorf("server info has no version"),
		}
	}
	return &domain.ServerInfo{Version: version}, nil
}

type oauthSettingsResponse struct {
	Services []map[string]any `json:"services"`
}

// SettingsOauth returns the server-advertised OAuth services.
// Non-string values in a service entry are dropped.
func (c *Client) SettingsOauth(ctx context.Context) (domain.OAuthServices, error) {
	var resp oauthSettingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/settings.oauth", nil, false, &resp); err != nil {
		return nil, err
	}

	services := make(domain.OAuthServices, 0, len(resp.Services))
	for _, raw := range resp.Services {
		service := make(domain.OAuthService, len(raw))
		for key, value := range raw {
			if s, ok := value.(string); ok {
				service[key] = s
			}
		}
		services = append(services, service)
	}
	return services, nil
}

type pushTokenRequest struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	AppName string `json:"appName"`
}

// RegisterPushToken registers a push notification token for the current session
func (c *Client) RegisterPushToken(ctx context.Context, pushToken string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/push.token", pushTokenRequest{
		Type:    "gcm",
		Value:   pushToken,
		AppName: c.appName,
	}, true, nil)
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request and decodes a JSON response into out (when non-nil).
// GET requests are retried on 5xx with a linear backoff.
func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var token *domain.Token
	if authenticated {
		token = c.Token()
		if token == nil {
			return domain.ErrNotAuthenticated
		}
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != nil {
			req.Header.Set("X-Auth-Token", token.AuthToken)
			req.Header.Set("X-User-Id", token.UserID)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &domain.RemoteError{Kind: domain.RemoteErrorTransport, Err: err}
		}

		if resp.StatusCode < 500 || attempt >= retries {
			break
		}

		resp.Body.Close()
		c.logger.Debug("retrying chat server request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Kind: domain.RemoteErrorTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.RemoteError{
			Kind:       domain.RemoteErrorProtocol,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func remoteError(status int, body []byte) *domain.RemoteError {
	kind := domain.RemoteErrorProtocol
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = domain.RemoteErrorAuth
	}

	remote := &domain.RemoteError{Kind: kind, StatusCode: status}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		remote.Message = strings.TrimSpace(er.Message)
		if remote.Message == "" {
			remote.Message = strings.TrimSpace(er.Error)
		}
	}
	return remote
}
