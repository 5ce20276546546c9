package http

import (
	"context"
	"net/http"

	"github.com/kurs0n/envini-gate/internal/middleware"
	"github.com/kurs0n/envini-gate/internal/service"
)

// ReposService defines the interface for repository aggregation operations
// required by the HTTP handlers.
type ReposService interface {
	// ListRepos returns the caller's GitHub repositories annotated with
	// the hasSecrets flag.
	ListRepos(ctx context.Context, jwt string) (*service.ListReposResult, error)
	// ListReposWithVersions returns the secrets backend's index of
	// repositories holding stored versions.
	ListReposWithVersions(ctx context.Context, jwt string) (*service.ListReposWithVersionsResult, error)
}

// ReposHandler handles HTTP requests for repository listings.
type ReposHandler struct {
	ReposService ReposService
}

// List handles GET /repos/list requests.
func (h *ReposHandler) List(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())

	result, err := h.ReposService.ListRepos(r.Context(), jwt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// ListWithVersions handles GET /repos/list-with-versions requests.
func (h *ReposHandler) ListWithVersions(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())

	result, err := h.ReposService.ListReposWithVersions(r.Context(), jwt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}
