package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kurs0n/envini-gate/internal/models"
	"github.com/kurs0n/envini-gate/internal/service"
)

func newTestRouter() http.Handler {
	auth := &fakeAuthService{
		handle:     &models.DeviceFlowHandle{UserCode: "ABCD-1234"},
		userResult: &service.UserResult{UserLogin: "octocat"},
	}
	repos := &fakeReposService{listResult: &service.ListReposResult{}}
	secrets := &fakeSecretsService{versionsResult: &service.ListVersionsResult{}}

	return NewRouter(
		&AuthHandler{AuthService: auth},
		&ReposHandler{ReposService: repos},
		&SecretsHandler{SecretsService: secrets},
		zap.NewNop(),
	)
}

func TestRouter_PublicAuthEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/github/start", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("device flow start must not require a token; got status %d", rec.Code)
	}
}

func TestRouter_ProtectedEndpointsRequireBearer(t *testing.T) {
	targets := []struct {
		method string
		path   string
	}{
		{"GET", "/auth/user"},
		{"GET", "/repos/list"},
		{"GET", "/repos/list-with-versions"},
		{"POST", "/secrets/upload/octocat/hello"},
		{"GET", "/secrets/versions/octocat/hello"},
		{"GET", "/secrets/download/octocat/hello"},
		{"GET", "/secrets/content/octocat/hello"},
		{"DELETE", "/secrets/delete/octocat/hello"},
	}
	router := newTestRouter()

	for _, tt := range targets {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401 without a token, got %d", rec.Code)
			}

			rec = httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401 for a non-bearer scheme, got %d", rec.Code)
			}
		})
	}
}

func TestRouter_UserEndpointForwardsToken(t *testing.T) {
	auth := &fakeAuthService{userResult: &service.UserResult{UserLogin: "octocat"}}
	router := NewRouter(
		&AuthHandler{AuthService: auth},
		&ReposHandler{ReposService: &fakeReposService{}},
		&SecretsHandler{SecretsService: &fakeSecretsService{}},
		zap.NewNop(),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/user", nil)
	req.Header.Set("Authorization", "Bearer jwt-1")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if auth.gotJWT != "jwt-1" {
		t.Errorf("expected GetUserLogin to receive jwt-1, got %q", auth.gotJWT)
	}
}
