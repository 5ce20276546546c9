// Package main initializes and starts the envini gateway, wiring
// configuration, logging, backend call adapters, orchestration services,
// and the HTTP surface.
package main

import (
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kurs0n/envini-gate/internal/backend"
	"github.com/kurs0n/envini-gate/internal/config"
	"github.com/kurs0n/envini-gate/internal/logger"
	"github.com/kurs0n/envini-gate/internal/server/handler/http"
	"github.com/kurs0n/envini-gate/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// orDefault mirrors cmp.Or for two strings; cmp.Or needs Go 1.22+
// and the build toolchain here is Go 1.21.
func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func main() {
	// Load a local .env file if present, then parse flags and env vars.
	_ = godotenv.Load()
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// The backend RPC clients are bound once here and injected down the
	// stack; nothing below holds state between requests.
	authClient := backend.NewAuthClient(options.AuthServiceURL)
	secretsClient := backend.NewSecretsClient(options.SecretsServiceURL)

	// Initialize orchestration services.
	authService := service.NewAuthService(authClient)
	secretsService := service.NewSecretsService(authService, secretsClient)
	reposService := service.NewReposService(authService, secretsClient)

	// Create HTTP handlers for the three endpoint groups.
	authHandler := &http.AuthHandler{AuthService: authService}
	reposHandler := &http.ReposHandler{ReposService: reposService}
	secretsHandler := &http.SecretsHandler{SecretsService: secretsService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, reposHandler, secretsHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.String("auth_service", options.AuthServiceURL),
		zap.String("secrets_service", options.SecretsServiceURL),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
