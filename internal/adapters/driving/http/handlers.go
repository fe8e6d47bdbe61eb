package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"unknown or expired login state"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// LoginResponse is the outcome of a completed callback
// @Description Outcome of a completed CAS or OAuth callback
type LoginResponse struct {
	State     string `json:"state" example:"success"`
	ServerURL string `json:"server_url" example:"https://chat.example.com"`
	Username  string `json:"username,omitempty" example:"alice"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the callback server
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status (checks the state store when configured)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "State store unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "state store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get version
// @Description  Returns the current build version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Callback endpoints

// handleCasCallback godoc
// @Summary      Complete CAS login
// @Description  Consumes the CAS state issued at view setup and logs in with it
// @Tags         Callbacks
// @Produce      json
// @Param        token  query     string  true  "CAS credential token"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  ErrorResponse  "Unknown or expired login state"
// @Failure      401    {object}  ErrorResponse  "Login rejected"
// @Failure      503    {object}  ErrorResponse  "No internet connection"
// @Router       /cas/callback [get]
func (s *Server) handleCasCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := s.callbacks.CompleteCas(r.Context(), token)
	s.writeResult(w, result, err)
}

// handleOAuthCallback godoc
// @Summary      Complete OAuth login
// @Description  Consumes the OAuth state issued at view setup and logs in with the credential
// @Tags         Callbacks
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        credentialToken   query     string  true  "OAuth credential token"
// @Param        credentialSecret  query     string  true  "OAuth credential secret"
// @Success      200               {object}  LoginResponse
// @Failure      400               {object}  ErrorResponse  "Unknown or expired login state"
// @Failure      401               {object}  ErrorResponse  "Login rejected"
// @Failure      503               {object}  ErrorResponse  "No internet connection"
// @Router       /oauth/callback [get]
// @Router       /oauth/callback [post]
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	token := r.Form.Get("credentialToken")
	secret := r.Form.Get("credentialSecret")
	if token == "" || secret == "" {
		writeError(w, http.StatusBadRequest, "credentialToken and credentialSecret are required")
		return
	}

	result, err := s.callbacks.CompleteOauth(r.Context(), token, secret)
	s.writeResult(w, result, err)
}

func (s *Server) writeResult(w http.ResponseWriter, result domain.LoginResult, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			writeError(w, http.StatusBadRequest, "unknown or expired login state")
			return
		}
		s.logger.Error("callback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "callback failed")
		return
	}

	if !result.Succeeded() {
		switch {
		case errors.Is(result.Err, domain.ErrNoConnectivity):
			writeError(w, http.StatusServiceUnavailable, "no internet connection")
		default:
			msg, ok := domain.UserMessage(result.Err)
			if !ok {
				msg = "login failed"
			}
			writeError(w, http.StatusUnauthorized, msg)
		}
		return
	}

	resp := LoginResponse{State: result.State.String(), ServerURL: s.serverURL}
	if result.Session != nil {
		resp.ServerURL = result.Session.ServerURL
		resp.Username = result.Session.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
