package http

import (
	"net/http"

	"github.com/kurs0n/envini-gate/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the gateway
// API. It applies request-id assignment, request logging, and panic
// recovery, and mounts the auth, repos, and secrets endpoint groups.
//
// Parameters:
//
//	authHandler    - handler for device flow and session endpoints
//	reposHandler   - handler for repository listing endpoints
//	secretsHandler - handler for secret version endpoints
//	logger         - structured logger for request logging middleware
//
// Routes:
//
//	POST   /auth/github/start             → authHandler.Start
//	GET    /auth/github/poll              → authHandler.Poll
//	GET    /auth/validate                 → authHandler.Validate
//	POST   /auth/logout                   → authHandler.Logout
//	GET    /auth/user                     → authHandler.User (bearer)
//	GET    /repos/list                    → reposHandler.List (bearer)
//	GET    /repos/list-with-versions      → reposHandler.ListWithVersions (bearer)
//	POST   /secrets/upload/{owner}/{repo} → secretsHandler.Upload (bearer)
//	GET    /secrets/versions/{owner}/{repo}  → secretsHandler.Versions (bearer)
//	GET    /secrets/download/{owner}/{repo}  → secretsHandler.Download (bearer)
//	GET    /secrets/content/{owner}/{repo}   → secretsHandler.Content (bearer)
//	DELETE /secrets/delete/{owner}/{repo}    → secretsHandler.Delete (bearer)
//
// Every bearer-protected group rejects a missing or malformed
// Authorization header with 401 before any backend call.
func NewRouter(
	authHandler *AuthHandler,
	reposHandler *ReposHandler,
	secretsHandler *SecretsHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Assign a request id and log each request with its metadata
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Public endpoints: nothing to authorize before a session exists
		r.Post("/github/start", authHandler.Start)
		r.Get("/github/poll", authHandler.Poll)
		r.Get("/validate", authHandler.Validate)
		r.Post("/logout", authHandler.Logout)

		// Protected group: requires a bearer session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth)
			r.Get("/user", authHandler.User)
		})
	})

	r.Route("/repos", func(r chi.Router) {
		r.Use(middleware.BearerAuth)
		r.Get("/list", reposHandler.List)
		r.Get("/list-with-versions", reposHandler.ListWithVersions)
	})

	r.Route("/secrets", func(r chi.Router) {
		r.Use(middleware.BearerAuth)
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Post("/upload/{owner}/{repo}", secretsHandler.Upload)
		r.Get("/versions/{owner}/{repo}", secretsHandler.Versions)
		r.Get("/download/{owner}/{repo}", secretsHandler.Download)
		r.Get("/content/{owner}/{repo}", secretsHandler.Content)
		r.Delete("/delete/{owner}/{repo}", secretsHandler.Delete)
	})

	return r
}
