package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/kurs0n/envini-gate/internal/models"
)

// wireRepo mirrors the secrets backend's repository shape. The id may arrive
// in the structured 64-bit form, so it is decoded through longID and
// flattened before anything upstream sees it.
type wireRepo struct {
	ID             longID `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"fullName"`
	HTMLURL        string `json:"htmlUrl"`
	Description    string `json:"description"`
	Private        bool   `json:"private"`
	OwnerLogin     string `json:"ownerLogin"`
	OwnerAvatarURL string `json:"ownerAvatarUrl"`
}

// ListReposResponse is the secrets backend's proxy of the caller's GitHub
// repository list.
type ListReposResponse struct {
	Repos []models.Repo `json:"repos,omitempty"`
	Error string        `json:"error,omitempty"`
}

// UploadSecretRequest stores a new secret version under a tag. The backend
// assigns the next version number for that tag.
type UploadSecretRequest struct {
	AccessToken    string `json:"accessToken"`
	UserLogin      string `json:"userLogin"`
	OwnerLogin     string `json:"ownerLogin"`
	RepoName       string `json:"repoName"`
	Tag            string `json:"tag"`
	EnvFileContent []byte `json:"envFileContent"`
}

// UploadSecretResponse reports the assigned version and checksum.
type UploadSecretResponse struct {
	Success  bool   `json:"success"`
	Version  int    `json:"version"`
	Checksum string `json:"checksum"`
	Error    string `json:"error,omitempty"`
}

// ListSecretVersionsRequest asks for a repository's full version ledger.
type ListSecretVersionsRequest struct {
	AccessToken string `json:"accessToken"`
	UserLogin   string `json:"userLogin"`
	OwnerLogin  string `json:"ownerLogin"`
	RepoName    string `json:"repoName"`
}

// ListSecretVersionsResponse carries the version ledger of one repository.
type ListSecretVersionsResponse struct {
	Versions []models.SecretVersion `json:"versions,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// DownloadSecretRequest fetches one version. Version 0 is the sentinel for
// "latest", resolved by the backend.
type DownloadSecretRequest struct {
	AccessToken string `json:"accessToken"`
	UserLogin   string `json:"userLogin"`
	OwnerLogin  string `json:"ownerLogin"`
	RepoName    string `json:"repoName"`
	Version     int    `json:"version"`
}

// DownloadSecretByTagRequest fetches the latest version under a tag.
type DownloadSecretByTagRequest struct {
	AccessToken string `json:"accessToken"`
	UserLogin   string `json:"userLogin"`
	OwnerLogin  string `json:"ownerLogin"`
	RepoName    string `json:"repoName"`
	Tag         string `json:"tag"`
}

// DownloadSecretResponse carries the decrypted file bytes and the ledger
// metadata of the resolved version.
type DownloadSecretResponse struct {
	Success        bool   `json:"success"`
	Version        int    `json:"version"`
	Tag            string `json:"tag"`
	EnvFileContent []byte `json:"envFileContent"`
	Checksum       string `json:"checksum"`
	UploadedBy     string `json:"uploadedBy"`
	CreatedAt      string `json:"createdAt"`
	IsEncrypted    bool   `json:"isEncrypted"`
	Error          string `json:"error,omitempty"`
}

// DeleteSecretRequest removes one version, or every version when Version is 0.
type DeleteSecretRequest struct {
	AccessToken string `json:"accessToken"`
	UserLogin   string `json:"userLogin"`
	OwnerLogin  string `json:"ownerLogin"`
	RepoName    string `json:"repoName"`
	Version     int    `json:"version"`
}

// DeleteSecretResponse reports how many versions were removed.
type DeleteSecretResponse struct {
	Success         bool   `json:"success"`
	DeletedVersions int    `json:"deletedVersions"`
	Error           string `json:"error,omitempty"`
}

// wireRepositoryWithVersions mirrors the backend index entry; repoId needs
// the same flattening as repo ids.
type wireRepositoryWithVersions struct {
	ID          int64                  `json:"id"`
	OwnerLogin  string                 `json:"ownerLogin"`
	RepoName    string                 `json:"repoName"`
	RepoID      longID                 `json:"repoId"`
	FullName    string                 `json:"fullName"`
	HTMLURL     string                 `json:"htmlUrl"`
	Description string                 `json:"description"`
	IsPrivate   bool                   `json:"isPrivate"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
	Versions    []models.SecretVersion `json:"versions"`
}

// ListRepositoriesWithVersionsResponse is the secrets backend's own index of
// repositories that hold at least one stored version.
type ListRepositoriesWithVersionsResponse struct {
	Repositories []models.RepositoryWithVersions `json:"repositories,omitempty"`
	Error        string                          `json:"error,omitempty"`
}

// SecretsClient is the typed call adapter for the secrets backend.
type SecretsClient struct {
	baseURL string
	client  *http.Client
}

// NewSecretsClient constructs a SecretsClient against the given base URL.
func NewSecretsClient(baseURL string) *SecretsClient {
	return &SecretsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ListRepos proxies the caller's GitHub repository list through the secrets
// backend, flattening repository ids to plain numbers.
func (c *SecretsClient) ListRepos(ctx context.Context, accessToken string) (*ListReposResponse, error) {
	req := struct {
		AccessToken string `json:"accessToken"`
	}{AccessToken: accessToken}
	var wire struct {
		Repos []wireRepo `json:"repos"`
		Error string     `json:"error"`
	}
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/list-repos", req, &wire); err != nil {
		return nil, err
	}

	out := &ListReposResponse{Error: wire.Error}
	for _, r := range wire.Repos {
		out.Repos = append(out.Repos, models.Repo{
			ID:             int64(r.ID),
			Name:           r.Name,
			FullName:       r.FullName,
			HTMLURL:        r.HTMLURL,
			Description:    r.Description,
			Private:        r.Private,
			OwnerLogin:     r.OwnerLogin,
			OwnerAvatarURL: r.OwnerAvatarURL,
		})
	}
	return out, nil
}

// UploadSecret stores a new version of the repository's environment file.
func (c *SecretsClient) UploadSecret(ctx context.Context, req UploadSecretRequest) (*UploadSecretResponse, error) {
	var out UploadSecretResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/upload", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSecretVersions fetches the repository's version ledger.
func (c *SecretsClient) ListSecretVersions(ctx context.Context, req ListSecretVersionsRequest) (*ListSecretVersionsResponse, error) {
	var out ListSecretVersionsResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/list-versions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadSecret fetches a specific version, or the latest when version is 0.
func (c *SecretsClient) DownloadSecret(ctx context.Context, req DownloadSecretRequest) (*DownloadSecretResponse, error) {
	var out DownloadSecretResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/download", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadSecretByTag fetches the latest version stored under the tag.
func (c *SecretsClient) DownloadSecretByTag(ctx context.Context, req DownloadSecretByTagRequest) (*DownloadSecretResponse, error) {
	var out DownloadSecretResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/download-by-tag", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSecret removes one version, or every version when req.Version is 0.
func (c *SecretsClient) DeleteSecret(ctx context.Context, req DeleteSecretRequest) (*DeleteSecretResponse, error) {
	var out DeleteSecretResponse
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/delete", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRepositoriesWithVersions fetches the backend's index of repositories
// that have at least one stored version.
func (c *SecretsClient) ListRepositoriesWithVersions(ctx context.Context, accessToken string) (*ListRepositoriesWithVersionsResponse, error) {
	req := struct {
		AccessToken string `json:"accessToken"`
	}{AccessToken: accessToken}
	var wire struct {
		Repositories []wireRepositoryWithVersions `json:"repositories"`
		Error        string                       `json:"error"`
	}
	if err := call(ctx, c.client, c.baseURL, "/rpc/secrets/list-repositories-with-versions", req, &wire); err != nil {
		return nil, err
	}

	out := &ListRepositoriesWithVersionsResponse{Error: wire.Error}
	for _, r := range wire.Repositories {
		out.Repositories = append(out.Repositories, models.RepositoryWithVersions{
			ID:          r.ID,
			OwnerLogin:  r.OwnerLogin,
			RepoName:    r.RepoName,
			RepoID:      int64(r.RepoID),
			FullName:    r.FullName,
			HTMLURL:     r.HTMLURL,
			Description: r.Description,
			IsPrivate:   r.IsPrivate,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			Versions:    r.Versions,
		})
	}
	return out, nil
}
