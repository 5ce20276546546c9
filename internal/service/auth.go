// Package service implements the gateway's orchestration logic: the device
// flow state machine, the secret version resolver, and the repository
// aggregator. Services hold no state between calls; everything they need
// arrives with the request or lives in the backends.
//
// Two error channels run through every service and must never be conflated:
// a Go error means the backend was unreachable or misbehaved at the transport
// level, while a populated Error/ErrorDescription pair inside a result means
// the backend was reached and refused the operation. Callers rely on the
// distinction to tell "pending, keep going" from "broken".
package service

import (
	"context"
	"fmt"

	"github.com/kurs0n/envini-gate/internal/backend"
	"github.com/kurs0n/envini-gate/internal/models"
)

// AuthBackend defines the authentication backend operations required by the
// auth service.
type AuthBackend interface {
	// StartDeviceFlow begins a GitHub device authorization flow.
	StartDeviceFlow(ctx context.Context) (*backend.StartDeviceFlowResponse, error)
	// PollForToken performs a single poll attempt for the device code.
	PollForToken(ctx context.Context, deviceCode string) (*backend.PollForTokenResponse, error)
	// GetAuthToken exchanges a session token for a GitHub access token.
	GetAuthToken(ctx context.Context, jwt string) (*backend.GetAuthTokenResponse, error)
	// GetUserLogin resolves the GitHub identity behind a session token.
	GetUserLogin(ctx context.Context, jwt string) (*backend.GetUserLoginResponse, error)
	// ValidateSession checks whether the session is still valid.
	ValidateSession(ctx context.Context, jwt string) (*backend.ValidateSessionResponse, error)
	// Logout invalidates the session.
	Logout(ctx context.Context, jwt string) (*backend.LogoutResponse, error)
}

// PollResult is one poll attempt's outcome as returned to the caller.
// Error "authorization_pending" is the retry signal; any other non-empty
// Error is terminal.
type PollResult struct {
	SessionID        string `json:"sessionId,omitempty"`
	JWT              string `json:"jwt,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// TokenResult carries a resolved GitHub access token or the backend's
// domain error.
type TokenResult struct {
	AccessToken      string `json:"accessToken,omitempty"`
	TokenType        string `json:"tokenType,omitempty"`
	Scope            string `json:"scope,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// UserResult carries the resolved GitHub identity or the backend's
// domain error.
type UserResult struct {
	UserLogin        string `json:"userLogin,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	HTMLURL          string `json:"htmlUrl,omitempty"`
	Name             string `json:"name,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// ValidateResult reports session validity.
type ValidateResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// LogoutResult reports session invalidation.
type LogoutResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthService orchestrates the device flow and the JWT-gated auth operations
// every other service depends on. It creates no local state per flow.
type AuthService struct {
	auth AuthBackend
}

// NewAuthService constructs an AuthService over the given backend adapter.
func NewAuthService(auth AuthBackend) *AuthService {
	return &AuthService{auth: auth}
}

// StartGitHubAuth begins a device flow and returns its handle.
func (s *AuthService) StartGitHubAuth(ctx context.Context) (*models.DeviceFlowHandle, error) {
	resp, err := s.auth.StartDeviceFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start GitHub auth: %w", err)
	}
	return &models.DeviceFlowHandle{
		VerificationURI: resp.VerificationURI,
		UserCode:        resp.UserCode,
		DeviceCode:      resp.DeviceCode,
		ExpiresIn:       resp.ExpiresIn,
		Interval:        resp.Interval,
	}, nil
}

// PollForToken forwards a single poll attempt. Backend-reported errors,
// including "authorization_pending", pass through verbatim so callers can
// distinguish pending from broken. Looping is the caller's responsibility.
func (s *AuthService) PollForToken(ctx context.Context, deviceCode string) (*PollResult, error) {
	resp, err := s.auth.PollForToken(ctx, deviceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to poll for token: %w", err)
	}
	if resp.Error != "" {
		return &PollResult{Error: resp.Error, ErrorDescription: resp.ErrorDescription}, nil
	}
	return &PollResult{SessionID: resp.SessionID, JWT: resp.JWT}, nil
}

// GetAuthToken exchanges a session token for a GitHub access token. The
// token is fetched fresh on every call and never cached by the gateway.
func (s *AuthService) GetAuthToken(ctx context.Context, jwt string) (*TokenResult, error) {
	resp, err := s.auth.GetAuthToken(ctx, jwt)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}
	if resp.Error != "" {
		return &TokenResult{Error: resp.Error, ErrorDescription: resp.ErrorDescription}, nil
	}
	return &TokenResult{AccessToken: resp.AccessToken, TokenType: resp.TokenType, Scope: resp.Scope}, nil
}

// GetUserLogin resolves the GitHub identity behind a session token.
func (s *AuthService) GetUserLogin(ctx context.Context, jwt string) (*UserResult, error) {
	resp, err := s.auth.GetUserLogin(ctx, jwt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user login: %w", err)
	}
	return &UserResult{
		UserLogin:        resp.UserLogin,
		AvatarURL:        resp.AvatarURL,
		HTMLURL:          resp.HTMLURL,
		Name:             resp.Name,
		Error:            resp.Error,
		ErrorDescription: resp.ErrorDescription,
	}, nil
}

// ValidateSession forwards a session validity check.
func (s *AuthService) ValidateSession(ctx context.Context, jwt string) (*ValidateResult, error) {
	resp, err := s.auth.ValidateSession(ctx, jwt)
	if err != nil {
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}
	return &ValidateResult{Valid: resp.Valid, Error: resp.Error}, nil
}

// Logout forwards a session invalidation.
func (s *AuthService) Logout(ctx context.Context, jwt string) (*LogoutResult, error) {
	resp, err := s.auth.Logout(ctx, jwt)
	if err != nil {
		return nil, fmt.Errorf("failed to logout: %w", err)
	}
	return &LogoutResult{Success: resp.Success, Error: resp.Error}, nil
}
