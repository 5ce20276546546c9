package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kurs0n/envini-gate/internal/backend"
	"github.com/kurs0n/envini-gate/internal/models"
)

type mockRepoIndex struct {
	ListReposFunc                    func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error)
	ListRepositoriesWithVersionsFunc func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error)
}

func (m *mockRepoIndex) ListRepos(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
	return m.ListReposFunc(ctx, accessToken)
}
func (m *mockRepoIndex) ListRepositoriesWithVersions(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
	return m.ListRepositoriesWithVersionsFunc(ctx, accessToken)
}

func TestListRepos_AnnotatesHasSecrets(t *testing.T) {
	index := &mockRepoIndex{
		ListReposFunc: func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
			if accessToken != "gh-token" {
				t.Errorf("ListRepos received token = %q; want the resolved access token", accessToken)
			}
			return &backend.ListReposResponse{Repos: []models.Repo{
				{Name: "alpha", OwnerLogin: "octocat", FullName: "octocat/alpha"},
				{Name: "beta", OwnerLogin: "octocat", FullName: "octocat/beta"},
				{Name: "gamma", OwnerLogin: "octocat", FullName: "octocat/gamma"},
			}}, nil
		},
		ListRepositoriesWithVersionsFunc: func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
			return &backend.ListRepositoriesWithVersionsResponse{Repositories: []models.RepositoryWithVersions{
				{OwnerLogin: "octocat", RepoName: "alpha"},
			}}, nil
		},
	}
	svc := NewReposService(okCreds(), index)

	result, err := svc.ListRepos(context.Background(), "jwt-1")
	if err != nil {
		t.Fatalf("ListRepos returned error: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("ListRepos Error = %q; want success", result.Error)
	}
	if len(result.Repos) != 3 {
		t.Fatalf("ListRepos returned %d repos; want 3", len(result.Repos))
	}

	want := map[string]bool{"alpha": true, "beta": false, "gamma": false}
	for _, r := range result.Repos {
		if r.HasSecrets != want[r.Name] {
			t.Errorf("repo %s hasSecrets = %v; want %v", r.Name, r.HasSecrets, want[r.Name])
		}
	}
}

func TestListRepos_SameNameDifferentOwner(t *testing.T) {
	index := &mockRepoIndex{
		ListReposFunc: func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
			return &backend.ListReposResponse{Repos: []models.Repo{
				{Name: "tools", OwnerLogin: "octocat"},
				{Name: "tools", OwnerLogin: "acme"},
			}}, nil
		},
		ListRepositoriesWithVersionsFunc: func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
			return &backend.ListRepositoriesWithVersionsResponse{Repositories: []models.RepositoryWithVersions{
				{OwnerLogin: "acme", RepoName: "tools"},
			}}, nil
		},
	}
	svc := NewReposService(okCreds(), index)

	result, err := svc.ListRepos(context.Background(), "jwt-1")
	if err != nil {
		t.Fatalf("ListRepos returned error: %v", err)
	}
	if result.Repos[0].HasSecrets {
		t.Error("octocat/tools hasSecrets = true; membership must key on owner and name")
	}
	if !result.Repos[1].HasSecrets {
		t.Error("acme/tools hasSecrets = false; want true")
	}
}

func TestListRepos_DomainErrorShortCircuits(t *testing.T) {
	creds := &mockCredentialSource{
		GetAuthTokenFunc: func(ctx context.Context, jwt string) (*TokenResult, error) {
			return &TokenResult{Error: "invalid_session"}, nil
		},
	}
	called := false
	index := &mockRepoIndex{
		ListReposFunc: func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
			called = true
			return &backend.ListReposResponse{}, nil
		},
	}
	svc := NewReposService(creds, index)

	result, err := svc.ListRepos(context.Background(), "stale-jwt")
	if err != nil {
		t.Fatalf("ListRepos returned error: %v", err)
	}
	if result.Error != "invalid_session" {
		t.Errorf("ListRepos Error = %q; want invalid_session", result.Error)
	}
	if called {
		t.Error("ListRepos reached the backend after a failed precondition")
	}
}

func TestListRepos_IndexFailureSkipsAnnotation(t *testing.T) {
	index := &mockRepoIndex{
		ListReposFunc: func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
			return &backend.ListReposResponse{Repos: []models.Repo{{Name: "alpha", OwnerLogin: "octocat"}}}, nil
		},
		ListRepositoriesWithVersionsFunc: func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
			return &backend.ListRepositoriesWithVersionsResponse{Error: "storage unavailable"}, nil
		},
	}
	svc := NewReposService(okCreds(), index)

	result, err := svc.ListRepos(context.Background(), "jwt-1")
	if err != nil {
		t.Fatalf("ListRepos returned error: %v", err)
	}
	if result.Error != "storage unavailable" {
		t.Errorf("ListRepos Error = %q; an index failure must fail the aggregation", result.Error)
	}
	if result.Repos != nil {
		t.Errorf("ListRepos Repos = %+v; want no partially annotated list", result.Repos)
	}
}

func TestListRepos_GitHubListTransportError(t *testing.T) {
	wantErr := errors.New("dial tcp: connection refused")
	index := &mockRepoIndex{
		ListReposFunc: func(ctx context.Context, accessToken string) (*backend.ListReposResponse, error) {
			return nil, wantErr
		},
	}
	svc := NewReposService(okCreds(), index)

	if _, err := svc.ListRepos(context.Background(), "jwt-1"); !errors.Is(err, wantErr) {
		t.Fatalf("ListRepos error = %v; want the transport error", err)
	}
}

func TestListReposWithVersions_Success(t *testing.T) {
	index := &mockRepoIndex{
		ListRepositoriesWithVersionsFunc: func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
			return &backend.ListRepositoriesWithVersionsResponse{Repositories: []models.RepositoryWithVersions{
				{
					OwnerLogin: "octocat",
					RepoName:   "alpha",
					RepoID:     42,
					Versions:   []models.SecretVersion{{Version: 1, Tag: "default"}},
				},
			}}, nil
		},
	}
	svc := NewReposService(okCreds(), index)

	result, err := svc.ListReposWithVersions(context.Background(), "jwt-1")
	if err != nil {
		t.Fatalf("ListReposWithVersions returned error: %v", err)
	}
	if len(result.Repositories) != 1 || result.Repositories[0].RepoID != 42 {
		t.Errorf("ListReposWithVersions = %+v; want the backend's index verbatim", result.Repositories)
	}
}

func TestListReposWithVersions_EmptyIndexIsSuccess(t *testing.T) {
	index := &mockRepoIndex{
		ListRepositoriesWithVersionsFunc: func(ctx context.Context, accessToken string) (*backend.ListRepositoriesWithVersionsResponse, error) {
			return &backend.ListRepositoriesWithVersionsResponse{}, nil
		},
	}
	svc := NewReposService(okCreds(), index)

	result, err := svc.ListReposWithVersions(context.Background(), "jwt-1")
	if err != nil {
		t.Fatalf("ListReposWithVersions returned error: %v", err)
	}
	if result.Repositories == nil {
		t.Fatal("ListReposWithVersions Repositories = nil; want an empty non-nil slice")
	}
}
