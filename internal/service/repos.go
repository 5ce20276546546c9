package service

import (
	"context"

	"github.com/kurs0n/envini-gate/internal/backend"
	"github.com/kurs0n/envini-gate/internal/models"
)

// RepoIndexBackend defines the secrets backend operations required by the
// repository aggregator.
type RepoIndexBackend interface {
	ListRepos(ctx context.Context, accessToken string) (*backend.ListReposResponse, error)
	ListRepositoriesWithVersions(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error)
}

// ListReposResult carries the caller's GitHub repositories annotated with
// the per-request hasSecrets flag.
type ListReposResult struct {
	Repos            []models.Repo `json:"repos,omitempty"`
	Error            string        `json:"error,omitempty"`
	ErrorDescription string        `json:"errorDescription,omitempty"`
}

// ListReposWithVersionsResult carries the secrets backend's own index of
// repositories holding stored versions.
type ListReposWithVersionsResult struct {
	Repositories     []models.RepositoryWithVersions `json:"repositories"`
	Error            string                          `json:"error,omitempty"`
	ErrorDescription string                          `json:"errorDescription,omitempty"`
}

// ReposService merges the caller's GitHub repository list with the secrets
// backend's stored-versions index. The hasSecrets annotation is a pure
// set-membership step over the two already-fetched lists; it issues no
// backend call of its own, and if either underlying call fails the
// aggregation is not attempted.
type ReposService struct {
	creds CredentialSource
	index RepoIndexBackend
}

// NewReposService constructs a ReposService over the given credential source
// and backend adapter.
func NewReposService(creds CredentialSource, index RepoIndexBackend) *ReposService {
	return &ReposService{creds: creds, index: index}
}

// resolveToken runs the auth-only phase of credential resolution: the
// aggregator needs an access token but not the caller's login.
func (s *ReposService) resolveToken(ctx context.Context, jwt string) (string, *domainError, error) {
	token, err := s.creds.GetAuthToken(ctx, jwt)
	if err != nil {
		return "", nil, err
	}
	if token.Error != "" {
		return "", &domainError{code: token.Error, desc: token.ErrorDescription}, nil
	}
	if token.AccessToken == "" {
		return "", &domainError{
			code: "no_access_token",
			desc: "No access token received from auth service",
		}, nil
	}
	return token.AccessToken, nil, nil
}

// ListRepos returns the caller's GitHub repositories, each annotated with
// hasSecrets by set membership against the stored-versions index.
func (s *ReposService) ListRepos(ctx context.Context, jwt string) (*ListReposResult, error) {
	accessToken, derr, err := s.resolveToken(ctx, jwt)
	if err != nil {
		return nil, err
	}
	if derr != nil {
		return &ListReposResult{Error: derr.code, ErrorDescription: derr.desc}, nil
	}

	repos, err := s.index.ListRepos(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if repos.Error != "" {
		return &ListReposResult{Error: repos.Error}, nil
	}

	idx, err := s.index.ListRepositoriesWithVersions(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if idx.Error != "" {
		return &ListReposResult{Error: idx.Error}, nil
	}

	stored := make(map[string]struct{}, len(idx.Repositories))
	for _, r := range idx.Repositories {
		stored[r.OwnerLogin+"/"+r.RepoName] = struct{}{}
	}

	annotated := make([]models.Repo, len(repos.Repos))
	for i, r := range repos.Repos {
		_, r.HasSecrets = stored[r.OwnerLogin+"/"+r.Name]
		annotated[i] = r
	}
	return &ListReposResult{Repos: annotated}, nil
}

// ListReposWithVersions returns the secrets backend's index of repositories
// that hold at least one stored version, with their version lists.
func (s *ReposService) ListReposWithVersions(ctx context.Context, jwt string) (*ListReposWithVersionsResult, error) {
	accessToken, derr, err := s.resolveToken(ctx, jwt)
	if err != nil {
		return nil, err
	}
	if derr != nil {
		return &ListReposWithVersionsResult{Error: derr.code, ErrorDescription: derr.desc}, nil
	}

	idx, err := s.index.ListRepositoriesWithVersions(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if idx.Error != "" {
		return &ListReposWithVersionsResult{Error: idx.Error}, nil
	}

	repositories := idx.Repositories
	if repositories == nil {
		repositories = []models.RepositoryWithVersions{}
	}
	return &ListReposWithVersionsResult{Repositories: repositories}, nil
}
