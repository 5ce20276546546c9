package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsClient_ListRepos_FlattensStructuredIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/secrets/list-repos", r.URL.Path)
		var body struct {
			AccessToken string `json:"accessToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gh-token", body.AccessToken)

		w.Write([]byte(`{
			"repos": [
				{"id": 101, "name": "alpha", "ownerLogin": "octocat", "fullName": "octocat/alpha"},
				{"id": {"low": 2, "high": 1, "unsigned": true}, "name": "beta", "ownerLogin": "octocat", "private": true}
			]
		}`))
	}))
	defer srv.Close()

	c := NewSecretsClient(srv.URL)
	resp, err := c.ListRepos(context.Background(), "gh-token")
	require.NoError(t, err)
	require.Len(t, resp.Repos, 2)

	assert.Equal(t, int64(101), resp.Repos[0].ID)
	assert.Equal(t, "octocat/alpha", resp.Repos[0].FullName)
	assert.Equal(t, int64(1)<<32|2, resp.Repos[1].ID)
	assert.True(t, resp.Repos[1].Private)
}

func TestSecretsClient_UploadSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/secrets/upload", r.URL.Path)
		var req UploadSecretRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gh-token", req.AccessToken)
		assert.Equal(t, "octocat", req.UserLogin)
		assert.Equal(t, "hello", req.RepoName)
		assert.Equal(t, "staging", req.Tag)
		assert.Equal(t, []byte("A=1\n"), req.EnvFileContent)

		json.NewEncoder(w).Encode(UploadSecretResponse{Success: true, Version: 3, Checksum: "abc123"})
	}))
	defer srv.Close()

	c := NewSecretsClient(srv.URL)
	resp, err := c.UploadSecret(context.Background(), UploadSecretRequest{
		AccessToken:    "gh-token",
		UserLogin:      "octocat",
		OwnerLogin:     "octocat",
		RepoName:       "hello",
		Tag:            "staging",
		EnvFileContent: []byte("A=1\n"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Version)
	assert.Equal(t, "abc123", resp.Checksum)
}

func TestSecretsClient_DownloadSecret_DomainErrorInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DownloadSecretResponse{Success: false, Error: "version not found"})
	}))
	defer srv.Close()

	c := NewSecretsClient(srv.URL)
	resp, err := c.DownloadSecret(context.Background(), DownloadSecretRequest{Version: 9})
	require.NoError(t, err, "a refused download is a domain error, not a transport error")
	assert.False(t, resp.Success)
	assert.Equal(t, "version not found", resp.Error)
}

func TestSecretsClient_DeleteSecret_VersionZeroOnTheWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/secrets/delete", r.URL.Path)
		var req DeleteSecretRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0, req.Version)

		json.NewEncoder(w).Encode(DeleteSecretResponse{Success: true, DeletedVersions: 4})
	}))
	defer srv.Close()

	c := NewSecretsClient(srv.URL)
	resp, err := c.DeleteSecret(context.Background(), DeleteSecretRequest{
		AccessToken: "gh-token",
		UserLogin:   "octocat",
		OwnerLogin:  "octocat",
		RepoName:    "hello",
		Version:     0,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.DeletedVersions)
}

func TestSecretsClient_ListRepositoriesWithVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/secrets/list-repositories-with-versions", r.URL.Path)
		w.Write([]byte(`{
			"repositories": [
				{
					"id": 1,
					"ownerLogin": "octocat",
					"repoName": "alpha",
					"repoId": {"low": 2, "high": 1, "unsigned": true},
					"versions": [{"version": 1, "tag": "default", "checksum": "aa"}]
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewSecretsClient(srv.URL)
	resp, err := c.ListRepositoriesWithVersions(context.Background(), "gh-token")
	require.NoError(t, err)
	require.Len(t, resp.Repositories, 1)

	repo := resp.Repositories[0]
	assert.Equal(t, "octocat", repo.OwnerLogin)
	assert.Equal(t, int64(1)<<32|2, repo.RepoID)
	require.Len(t, repo.Versions, 1)
	assert.Equal(t, "default", repo.Versions[0].Tag)
}
