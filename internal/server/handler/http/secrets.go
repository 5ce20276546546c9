package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kurs0n/envini-gate/internal/middleware"
	"github.com/kurs0n/envini-gate/internal/service"
)

// SecretsService defines the interface for secret version operations
// required by the HTTP handlers. Results carry their own domain error
// channel; the methods return no Go error because gateway-caught faults
// are folded into the "_error" codes.
type SecretsService interface {
	Upload(ctx context.Context, jwt, ownerLogin, repoName, tag string, content []byte) *service.UploadResult
	ListVersions(ctx context.Context, jwt, ownerLogin, repoName string) *service.ListVersionsResult
	Download(ctx context.Context, jwt, ownerLogin, repoName string, version int) *service.DownloadResult
	DownloadByTag(ctx context.Context, jwt, ownerLogin, repoName, tag string) *service.DownloadResult
	Delete(ctx context.Context, jwt, ownerLogin, repoName string, version int) *service.DeleteResult
}

// SecretsHandler handles HTTP requests for secret upload, listing,
// download, and deletion.
type SecretsHandler struct {
	SecretsService SecretsService
}

// Upload handles POST /secrets/upload/{owner}/{repo} requests with a
// {"tag": ..., "envFileContent": <base64>} body.
func (h *SecretsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	var req struct {
		Tag            string `json:"tag"`
		EnvFileContent string `json:"envFileContent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.EnvFileContent == "" {
		http.Error(w, "envFileContent is required", http.StatusBadRequest)
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.EnvFileContent)
	if err != nil {
		http.Error(w, "envFileContent must be base64-encoded", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.SecretsService.Upload(r.Context(), jwt, owner, repo, req.Tag, content))
}

// Versions handles GET /secrets/versions/{owner}/{repo} requests.
func (h *SecretsHandler) Versions(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	writeJSON(w, h.SecretsService.ListVersions(r.Context(), jwt, owner, repo))
}

// resolveDownload routes a download-shaped request by its addressing rule:
// tag takes precedence over version, an absent version means 0 ("latest").
// A malformed version reports ok=false after writing a 400.
func (h *SecretsHandler) resolveDownload(w http.ResponseWriter, r *http.Request) (result *service.DownloadResult, tag string, ok bool) {
	jwt := middleware.GetJWTFromContext(r.Context())
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	tag = r.URL.Query().Get("tag")

	if tag != "" {
		return h.SecretsService.DownloadByTag(r.Context(), jwt, owner, repo, tag), tag, true
	}

	version := 0
	if v := r.URL.Query().Get("version"); v != "" {
		var err error
		version, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "version must be a valid number", http.StatusBadRequest)
			return nil, "", false
		}
	}
	return h.SecretsService.Download(r.Context(), jwt, owner, repo, version), "", true
}

// Download handles GET /secrets/download/{owner}/{repo}?version=|tag=
// requests. On success the file bytes are served as an attachment with the
// ledger metadata in X-Secret-* headers; on a domain failure the payload is
// returned with a 400 status.
func (h *SecretsHandler) Download(w http.ResponseWriter, r *http.Request) {
	result, tag, ok := h.resolveDownload(w, r)
	if !ok {
		return
	}

	if !result.Success || result.EnvFileContent == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":            orDefault(result.Error, "download_failed"),
			"errorDescription": orDefault(result.ErrorDescription, "Failed to download secret"),
		})
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	filename := fmt.Sprintf("%s-%s-v%d.env", owner, repo, result.Version)
	if tag != "" {
		filename = fmt.Sprintf("%s-%s-%s-v%d.env", owner, repo, tag, result.Version)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Secret-Version", strconv.Itoa(result.Version))
	w.Header().Set("X-Secret-Tag", result.Tag)
	w.Header().Set("X-Secret-Checksum", result.Checksum)
	w.Header().Set("X-Secret-UploadedBy", result.UploadedBy)
	w.Header().Set("X-Secret-CreatedAt", result.CreatedAt)
	_, _ = w.Write(result.EnvFileContent)
}

// Content handles GET /secrets/content/{owner}/{repo}?version=|tag=
// requests, returning the same resolution as Download but as JSON.
func (h *SecretsHandler) Content(w http.ResponseWriter, r *http.Request) {
	result, _, ok := h.resolveDownload(w, r)
	if !ok {
		return
	}
	writeJSON(w, result)
}

// Delete handles DELETE /secrets/delete/{owner}/{repo}?version=|all=true
// requests. all=true forwards version 0, the "delete every version"
// sentinel; otherwise an explicit version is required.
func (h *SecretsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	jwt := middleware.GetJWTFromContext(r.Context())
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	version := 0
	if r.URL.Query().Get("all") != "true" {
		v := r.URL.Query().Get("version")
		if v == "" {
			http.Error(w, "version parameter is required unless deleting all versions", http.StatusBadRequest)
			return
		}
		var err error
		version, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "version must be a valid number", http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, h.SecretsService.Delete(r.Context(), jwt, owner, repo, version))
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
