package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the local callback server that receives CAS and OAuth redirects
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	serverURL  string
	logger     *slog.Logger

	callbacks driving.CallbackService

	// store is checked by /ready (optional)
	store Pinger
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// ServerURL is the chat server the callbacks log in to
	ServerURL      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    8765,
		Version: "dev",
	}
}

// NewServer creates a new callback server
func NewServer(cfg Config, callbacks driving.CallbackService, store Pinger) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:    http.NewServeMux(),
		version:   cfg.Version,
		serverURL: cfg.ServerURL,
		logger:    logger,
		callbacks: callbacks,
		store:     store,
	}

	var handler http.Handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Callback endpoints receive browser redirects
	s.router.HandleFunc("GET /cas/callback", s.handleCasCallback)
	s.router.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
	s.router.HandleFunc("POST /oauth/callback", s.handleOAuthCallback)
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting callback server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("callback server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down callback server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("callback server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
