package service

import (
	"context"

	"github.com/kurs0n/envini-gate/internal/backend"
	"github.com/kurs0n/envini-gate/internal/models"
)

// DefaultTag is the tag recorded when the caller uploads without one, so the
// ledger never holds an unnamed tag sequence.
const DefaultTag = "default"

// CredentialSource supplies the two credentials every secrets operation
// needs: the GitHub access token and the caller's login identity.
type CredentialSource interface {
	GetAuthToken(ctx context.Context, jwt string) (*TokenResult, error)
	GetUserLogin(ctx context.Context, jwt string) (*UserResult, error)
}

// SecretsBackend defines the secrets backend operations required by the
// secrets service.
type SecretsBackend interface {
	UploadSecret(ctx context.Context, req backend.UploadSecretRequest) (*backend.UploadSecretResponse, error)
	ListSecretVersions(ctx context.Context, req backend.ListSecretVersionsRequest) (*backend.ListSecretVersionsResponse, error)
	DownloadSecret(ctx context.Context, req backend.DownloadSecretRequest) (*backend.DownloadSecretResponse, error)
	DownloadSecretByTag(ctx context.Context, req backend.DownloadSecretByTagRequest) (*backend.DownloadSecretResponse, error)
	DeleteSecret(ctx context.Context, req backend.DeleteSecretRequest) (*backend.DeleteSecretResponse, error)
}

// UploadResult is the outcome of storing a new secret version.
type UploadResult struct {
	Success          bool   `json:"success,omitempty"`
	Version          int    `json:"version,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// ListVersionsResult carries a repository's version ledger.
type ListVersionsResult struct {
	Versions         []models.SecretVersion `json:"versions"`
	Error            string                 `json:"error,omitempty"`
	ErrorDescription string                 `json:"errorDescription,omitempty"`
}

// DownloadResult carries the resolved version's content and metadata.
type DownloadResult struct {
	Success          bool   `json:"success,omitempty"`
	Version          int    `json:"version,omitempty"`
	Tag              string `json:"tag,omitempty"`
	EnvFileContent   []byte `json:"envFileContent,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	UploadedBy       string `json:"uploadedBy,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// DeleteResult reports how many versions were removed.
type DeleteResult struct {
	Success          bool   `json:"success,omitempty"`
	DeletedVersions  int    `json:"deletedVersions,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// SecretsService implements the (tag, version) addressing protocol. Every
// operation resolves credentials first and never touches the secrets backend
// once a precondition fails.
//
// The error taxonomy distinguishes backend-refused operations (the "_failed"
// codes: backend reachable, operation refused) from gateway-caught faults
// (the "_error" codes: backend unreachable or unexpected failure). Callers
// use the suffix to decide whether a retry is meaningful.
type SecretsService struct {
	creds   CredentialSource
	secrets SecretsBackend
}

// NewSecretsService constructs a SecretsService over the given credential
// source and backend adapter.
func NewSecretsService(creds CredentialSource, secrets SecretsBackend) *SecretsService {
	return &SecretsService{creds: creds, secrets: secrets}
}

// credentials holds the pair required by every secrets backend call.
type credentials struct {
	accessToken string
	userLogin   string
}

// domainError is a terminal short-circuit outcome of credential resolution.
type domainError struct {
	code string
	desc string
}

// resolveCredentials runs the two-phase precondition shared by every secrets
// operation. The three terminal outcomes are mutually exclusive and checked
// in a fixed order: auth backend error, then missing access token, then
// missing user login. A non-nil Go error means the auth backend itself was
// unreachable.
func (s *SecretsService) resolveCredentials(ctx context.Context, jwt string) (credentials, *domainError, error) {
	token, err := s.creds.GetAuthToken(ctx, jwt)
	if err != nil {
		return credentials{}, nil, err
	}
	if token.Error != "" {
		return credentials{}, &domainError{code: token.Error, desc: token.ErrorDescription}, nil
	}
	if token.AccessToken == "" {
		return credentials{}, &domainError{
			code: "no_access_token",
			desc: "No access token received from auth service",
		}, nil
	}

	user, err := s.creds.GetUserLogin(ctx, jwt)
	if err != nil {
		return credentials{}, nil, err
	}
	if user.Error != "" {
		return credentials{}, &domainError{code: user.Error, desc: user.ErrorDescription}, nil
	}
	if user.UserLogin == "" {
		return credentials{}, &domainError{
			code: "no_user_login",
			desc: "No user login received from auth service",
		}, nil
	}

	return credentials{accessToken: token.AccessToken, userLogin: user.UserLogin}, nil, nil
}

// Upload stores file content as the next version under the tag. An empty tag
// defaults to DefaultTag.
func (s *SecretsService) Upload(ctx context.Context, jwt, ownerLogin, repoName, tag string, content []byte) *UploadResult {
	creds, derr, err := s.resolveCredentials(ctx, jwt)
	if err != nil {
		return &UploadResult{Error: "upload_error", ErrorDescription: err.Error()}
	}
	if derr != nil {
		return &UploadResult{Error: derr.code, ErrorDescription: derr.desc}
	}

	if tag == "" {
		tag = DefaultTag
	}

	resp, err := s.secrets.UploadSecret(ctx, backend.UploadSecretRequest{
		AccessToken:    creds.accessToken,
		UserLogin:      creds.userLogin,
		OwnerLogin:     ownerLogin,
		RepoName:       repoName,
		Tag:            tag,
		EnvFileContent: content,
	})
	if err != nil {
		return &UploadResult{Error: "upload_error", ErrorDescription: err.Error()}
	}
	if !resp.Success {
		return &UploadResult{Error: "upload_failed", ErrorDescription: orDefault(resp.Error, "Failed to upload secret")}
	}
	return &UploadResult{Success: true, Version: resp.Version, Checksum: resp.Checksum}
}

// ListVersions fetches the repository's version ledger. An empty ledger is a
// successful outcome, not a failure.
func (s *SecretsService) ListVersions(ctx context.Context, jwt, ownerLogin, repoName string) *ListVersionsResult {
	creds, derr, err := s.resolveCredentials(ctx, jwt)
	if err != nil {
		return &ListVersionsResult{Error: "list_error", ErrorDescription: err.Error()}
	}
	if derr != nil {
		return &ListVersionsResult{Error: derr.code, ErrorDescription: derr.desc}
	}

	resp, err := s.secrets.ListSecretVersions(ctx, backend.ListSecretVersionsRequest{
		AccessToken: creds.accessToken,
		UserLogin:   creds.userLogin,
		OwnerLogin:  ownerLogin,
		RepoName:    repoName,
	})
	if err != nil {
		return &ListVersionsResult{Error: "list_error", ErrorDescription: err.Error()}
	}
	if resp.Error != "" {
		return &ListVersionsResult{Error: "list_failed", ErrorDescription: resp.Error}
	}

	versions := resp.Versions
	if versions == nil {
		versions = []models.SecretVersion{}
	}
	return &ListVersionsResult{Versions: versions}
}

// Download fetches a specific version; version 0 means "latest", resolved by
// the backend, not the gateway.
func (s *SecretsService) Download(ctx context.Context, jwt, ownerLogin, repoName string, version int) *DownloadResult {
	creds, derr, err := s.resolveCredentials(ctx, jwt)
	if err != nil {
		return &DownloadResult{Error: "download_error", ErrorDescription: err.Error()}
	}
	if derr != nil {
		return &DownloadResult{Error: derr.code, ErrorDescription: derr.desc}
	}

	resp, err := s.secrets.DownloadSecret(ctx, backend.DownloadSecretRequest{
		AccessToken: creds.accessToken,
		UserLogin:   creds.userLogin,
		OwnerLogin:  ownerLogin,
		RepoName:    repoName,
		Version:     version,
	})
	if err != nil {
		return &DownloadResult{Error: "download_error", ErrorDescription: err.Error()}
	}
	return downloadOutcome(resp, "Failed to download secret")
}

// DownloadByTag fetches the latest version stored under the tag.
func (s *SecretsService) DownloadByTag(ctx context.Context, jwt, ownerLogin, repoName, tag string) *DownloadResult {
	creds, derr, err := s.resolveCredentials(ctx, jwt)
	if err != nil {
		return &DownloadResult{Error: "download_error", ErrorDescription: err.Error()}
	}
	if derr != nil {
		return &DownloadResult{Error: derr.code, ErrorDescription: derr.desc}
	}

	resp, err := s.secrets.DownloadSecretByTag(ctx, backend.DownloadSecretByTagRequest{
		AccessToken: creds.accessToken,
		UserLogin:   creds.userLogin,
		OwnerLogin:  ownerLogin,
		RepoName:    repoName,
		Tag:         tag,
	})
	if err != nil {
		return &DownloadResult{Error: "download_error", ErrorDescription: err.Error()}
	}
	return downloadOutcome(resp, "Failed to download secret by tag")
}

// Delete removes one version, or every version of the repository when
// version is 0. The gateway does not enumerate or verify existence first;
// the backend reports the removed count.
func (s *SecretsService) Delete(ctx context.Context, jwt, ownerLogin, repoName string, version int) *DeleteResult {
	creds, derr, err := s.resolveCredentials(ctx, jwt)
	if err != nil {
		return &DeleteResult{Error: "delete_error", ErrorDescription: err.Error()}
	}
	if derr != nil {
		return &DeleteResult{Error: derr.code, ErrorDescription: derr.desc}
	}

	resp, err := s.secrets.DeleteSecret(ctx, backend.DeleteSecretRequest{
		AccessToken: creds.accessToken,
		UserLogin:   creds.userLogin,
		OwnerLogin:  ownerLogin,
		RepoName:    repoName,
		Version:     version,
	})
	if err != nil {
		return &DeleteResult{Error: "delete_error", ErrorDescription: err.Error()}
	}
	if !resp.Success {
		return &DeleteResult{Error: "delete_failed", ErrorDescription: orDefault(resp.Error, "Failed to delete secret")}
	}
	return &DeleteResult{Success: true, DeletedVersions: resp.DeletedVersions}
}

func downloadOutcome(resp *backend.DownloadSecretResponse, fallback string) *DownloadResult {
	if !resp.Success {
		return &DownloadResult{Error: "download_failed", ErrorDescription: orDefault(resp.Error, fallback)}
	}
	return &DownloadResult{
		Success:        true,
		Version:        resp.Version,
		Tag:            resp.Tag,
		EnvFileContent: resp.EnvFileContent,
		Checksum:       resp.Checksum,
		UploadedBy:     resp.UploadedBy,
		CreatedAt:      resp.CreatedAt,
	}
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
