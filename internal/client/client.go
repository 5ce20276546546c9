// Package client provides a typed HTTP client for the envini gateway,
// including the caller-side device-flow polling loop. The gateway itself
// never loops; each poll is an independent request, and cancellation is
// simply the client ceasing to poll.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurs0n/envini-gate/internal/models"
	"github.com/kurs0n/envini-gate/internal/service"
)

const (
	// maxPollAttempts bounds the device-flow polling loop. Together with
	// the default interval it gives a ten-minute authentication window.
	maxPollAttempts = 120
	// defaultPollInterval is used when the device-flow handle does not
	// supply its own interval.
	defaultPollInterval = 5 * time.Second
)

// ErrPollTimeout is returned when the polling loop exhausts its attempts
// without the user completing authorization.
var ErrPollTimeout = errors.New("device flow timed out waiting for authorization")

// Client talks to the envini gateway. Token, when set, is sent as the
// bearer credential on protected endpoints.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New constructs a Client for the gateway at baseURL.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoginResult is the terminal outcome of a completed device flow.
type LoginResult struct {
	SessionID string `json:"sessionId"`
	JWT       string `json:"jwt"`
}

// DownloadedSecret is a downloaded environment file with the ledger
// metadata carried in the gateway's X-Secret-* headers.
type DownloadedSecret struct {
	Content    []byte
	Version    int
	Tag        string
	Checksum   string
	UploadedBy string
	CreatedAt  string
}

// doJSON performs a request and decodes the JSON response into out.
// Non-2xx statuses are returned as errors carrying the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: gateway returned status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// StartGitHubAuth begins a device flow and returns the handle the user
// needs to authorize on GitHub.
func (c *Client) StartGitHubAuth(ctx context.Context) (*models.DeviceFlowHandle, error) {
	var handle models.DeviceFlowHandle
	if err := c.doJSON(ctx, http.MethodPost, "/auth/github/start", nil, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// PollForToken performs a single poll attempt for the device code.
func (c *Client) PollForToken(ctx context.Context, deviceCode string) (*service.PollResult, error) {
	var result service.PollResult
	path := "/auth/github/poll?deviceCode=" + url.QueryEscape(deviceCode)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForLogin drives the bounded polling loop for an already-started
// device flow: one independent poll per interval, at most maxPollAttempts
// attempts. "authorization_pending" and "slow_down" continue the loop; any
// other backend error is terminal. On success the session token is
// installed on the client.
func (c *Client) WaitForLogin(ctx context.Context, handle *models.DeviceFlowHandle) (*LoginResult, error) {
	interval := defaultPollInterval
	if handle.Interval > 0 {
		interval = time.Duration(handle.Interval) * time.Second
	}

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		result, err := c.PollForToken(ctx, handle.DeviceCode)
		if err != nil {
			return nil, err
		}

		switch result.Error {
		case "":
			c.Token = result.JWT
			return &LoginResult{SessionID: result.SessionID, JWT: result.JWT}, nil
		case "authorization_pending", "slow_down":
			continue
		default:
			return nil, fmt.Errorf("device flow failed: %s: %s", result.Error, result.ErrorDescription)
		}
	}
	return nil, ErrPollTimeout
}

// ValidateSession checks whether the given session token is still valid.
func (c *Client) ValidateSession(ctx context.Context, jwt string) (*service.ValidateResult, error) {
	var result service.ValidateResult
	path := "/auth/validate?jwt=" + url.QueryEscape(jwt)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the client's session token.
func (c *Client) Logout(ctx context.Context) (*service.LogoutResult, error) {
	var result service.LogoutResult
	body := map[string]string{"jwt": c.Token}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// User resolves the identity behind the client's session token.
func (c *Client) User(ctx context.Context) (*service.UserResult, error) {
	var result service.UserResult
	if err := c.doJSON(ctx, http.MethodGet, "/auth/user", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRepos returns the caller's GitHub repositories with the hasSecrets
// annotation.
func (c *Client) ListRepos(ctx context.Context) (*service.ListReposResult, error) {
	var result service.ListReposResult
	if err := c.doJSON(ctx, http.MethodGet, "/repos/list", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListReposWithVersions returns the repositories that hold stored versions.
func (c *Client) ListReposWithVersions(ctx context.Context) (*service.ListReposWithVersionsResult, error) {
	var result service.ListReposWithVersionsResult
	if err := c.doJSON(ctx, http.MethodGet, "/repos/list-with-versions", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListVersions returns the version ledger of one repository.
func (c *Client) ListVersions(ctx context.Context, owner, repo string) (*service.ListVersionsResult, error) {
	var result service.ListVersionsResult
	path := fmt.Sprintf("/secrets/versions/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload stores content as the next version under the tag.
func (c *Client) Upload(ctx context.Context, owner, repo, tag string, content []byte) (*service.UploadResult, error) {
	var result service.UploadResult
	path := fmt.Sprintf("/secrets/upload/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	body := map[string]string{
		"tag":            tag,
		"envFileContent": base64.StdEncoding.EncodeToString(content),
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download fetches one version as a file. version 0 means latest; a
// non-empty tag takes precedence over the version.
func (c *Client) Download(ctx context.Context, owner, repo, tag string, version int) (*DownloadedSecret, error) {
	path := fmt.Sprintf("/secrets/download/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	} else if version > 0 {
		q.Set("version", strconv.Itoa(version))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var domain struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"errorDescription"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&domain); err == nil && domain.Error != "" {
			return nil, fmt.Errorf("download failed: %s: %s", domain.Error, domain.ErrorDescription)
		}
		return nil, fmt.Errorf("GET %s: gateway returned status %d", path, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resolved, _ := strconv.Atoi(resp.Header.Get("X-Secret-Version"))
	return &DownloadedSecret{
		Content:    content,
		Version:    resolved,
		Tag:        resp.Header.Get("X-Secret-Tag"),
		Checksum:   resp.Header.Get("X-Secret-Checksum"),
		UploadedBy: resp.Header.Get("X-Secret-UploadedBy"),
		CreatedAt:  resp.Header.Get("X-Secret-CreatedAt"),
	}, nil
}

// Delete removes one version, or every version when all is true.
func (c *Client) Delete(ctx context.Context, owner, repo string, version int, all bool) (*service.DeleteResult, error) {
	var result service.DeleteResult
	path := fmt.Sprintf("/secrets/delete/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	q := url.Values{}
	if all {
		q.Set("all", "true")
	} else {
		q.Set("version", strconv.Itoa(version))
	}
	path += "?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
