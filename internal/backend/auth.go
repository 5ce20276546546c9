package backend

import (
	"context"
	"net/http"
	"time"
)

// StartDeviceFlowResponse is the auth backend's answer to a device-flow start.
type StartDeviceFlowResponse struct {
	VerificationURI string `json:"verificationUri"`
	UserCode        string `json:"userCode"`
	DeviceCode      string `json:"deviceCode"`
	ExpiresIn       int    `json:"expiresIn"`
	Interval        int    `json:"interval"`
}

// PollForTokenResponse is one poll attempt's outcome. Exactly one of
// (SessionID, JWT) or (Error, ErrorDescription) is populated; the
// distinguished Error value "authorization_pending" signals the caller
// to keep polling.
type PollForTokenResponse struct {
	SessionID        string `json:"sessionId,omitempty"`
	JWT              string `json:"jwt,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// GetAuthTokenResponse carries the GitHub access token minted for a session.
type GetAuthTokenResponse struct {
	AccessToken      string `json:"accessToken,omitempty"`
	TokenType        string `json:"tokenType,omitempty"`
	Scope            string `json:"scope,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// GetUserLoginResponse carries the GitHub identity behind a session.
type GetUserLoginResponse struct {
	UserLogin        string `json:"userLogin,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	HTMLURL          string `json:"htmlUrl,omitempty"`
	Name             string `json:"name,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// ValidateSessionResponse reports whether a session token is still valid.
type ValidateSessionResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// LogoutResponse reports whether a session was invalidated.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthClient is the typed call adapter for the authentication backend.
type AuthClient struct {
	baseURL string
	client  *http.Client
}

// NewAuthClient constructs an AuthClient against the given base URL.
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// StartDeviceFlow asks the auth backend to begin a GitHub device flow.
func (c *AuthClient) StartDeviceFlow(ctx context.Context) (*StartDeviceFlowResponse, error) {
	var out StartDeviceFlowResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/start-device-flow", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollForToken performs a single poll attempt for the given device code.
// Looping is the caller's responsibility.
func (c *AuthClient) PollForToken(ctx context.Context, deviceCode string) (*PollForTokenResponse, error) {
	req := struct {
		DeviceCode string `json:"deviceCode"`
	}{DeviceCode: deviceCode}
	var out PollForTokenResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/poll-for-token", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAuthToken exchanges a session token for a GitHub access token.
func (c *AuthClient) GetAuthToken(ctx context.Context, jwt string) (*GetAuthTokenResponse, error) {
	var out GetAuthTokenResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/get-auth-token", jwtRequest{JWT: jwt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserLogin resolves the GitHub identity behind a session token.
func (c *AuthClient) GetUserLogin(ctx context.Context, jwt string) (*GetUserLoginResponse, error) {
	var out GetUserLoginResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/get-user-login", jwtRequest{JWT: jwt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateSession checks whether the session behind the token still exists.
func (c *AuthClient) ValidateSession(ctx context.Context, jwt string) (*ValidateSessionResponse, error) {
	var out ValidateSessionResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/validate-session", jwtRequest{JWT: jwt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the session behind the token.
func (c *AuthClient) Logout(ctx context.Context, jwt string) (*LogoutResponse, error) {
	var out LogoutResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/auth/logout", jwtRequest{JWT: jwt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// jwtRequest is the request body shared by all session-scoped auth calls.
type jwtRequest struct {
	JWT string `json:"jwt"`
}
