// Package http provides the gateway's HTTP handlers: thin translations
// between the REST surface and the orchestration services.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kurs0n/envini-gate/internal/middleware"
	"github.com/kurs0n/envini-gate/internal/models"
	"github.com/kurs0n/envini-gate/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// StartGitHubAuth begins a GitHub device flow and returns its handle.
	StartGitHubAuth(ctx context.Context) (*models.DeviceFlowHandle, error)
	// PollForToken performs a single poll attempt for the device code.
	PollForToken(ctx context.Context, deviceCode string) (*service.PollResult, error)
	// GetUserLogin resolves the GitHub identity behind a session token.
	GetUserLogin(ctx context.Context, jwt string) (*service.UserResult, error)
	// ValidateSession checks whether the session is still valid.
	ValidateSession(ctx context.Context, jwt string) (*service.ValidateResult, error)
	// Logout invalidates the session.
	Logout(ctx context.Context, jwt string) (*service.LogoutResult, error)
}

// AuthHandler handles HTTP requests for the device flow and session
// operations.
type AuthHandler struct {
	AuthService AuthService
}

// Start handles POST /auth/github/start requests.
// It begins a device flow and returns the handle as JSON.
func (h *AuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	handle, err := h.AuthService.StartGitHubAuth(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, handle)
}

// Poll handles GET /auth/github/poll?deviceCode= requests.
// Each call is one independent poll attempt; the "authorization_pending"
// outcome is returned with a normal success status so the caller can keep
// polling. Looping and its bounds live in the caller.
func (h *AuthHandler) Poll(w http.ResponseWriter, r *http.Request) {
	deviceCode := r.URL.Query().Get("deviceCode")
	if deviceCode == "" {
		http.Error(w, "deviceCode is required", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.PollForToken(r.Context(), deviceCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// Validate handles GET /auth/validate?jwt= requests.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	jwt := r.URL.Query().Get("jwt")
	if jwt == "" {
		http.Error(w, "jwt is required", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.ValidateSession(r.Context(), jwt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// Logout handles POST /auth/logout requests with a {"jwt": ...} body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JWT string `json:"jwt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JWT == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.Logout(r.Context(), req.JWT)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// User handles GET /auth/user requests. The bearer token is extracted by
// the auth middleware; the identity is resolved through the auth backend.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())

	result, err := h.AuthService.GetUserLogin(r.Context(), jwt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
