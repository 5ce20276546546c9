// Package cli provides the envini command-line client for the gateway.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kurs0n/envini-gate/internal/client"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "envini",
	Short: "envini - environment file secrets from the command line",
	Long: `envini manages per-repository environment files through the envini gateway.

Authenticate once with the GitHub device flow, then upload, list, download,
and delete versioned .env files for any repository you have access to.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:3000", "gateway base URL")
}

// tokenFile is the stored session state written after a successful login.
type tokenFile struct {
	JWT       string `json:"jwt"`
	SessionID string `json:"sessionId"`
	UserLogin string `json:"userLogin,omitempty"`
}

// tokenPath returns the session-token file location under the user config
// directory.
func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "envini", "token.json"), nil
}

// saveToken persists the session state for later commands.
func saveToken(tf *tokenFile) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.Marshal(tf)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// loadToken reads the stored session state. A missing file is reported as
// a not-logged-in error.
func loadToken() (*tokenFile, error) {
	path, err := tokenPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not logged in; run `envini login` first")
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tf, nil
}

// clearToken removes the stored session state if present.
func clearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// gatewayClient builds a client carrying the stored session token.
func gatewayClient() (*client.Client, error) {
	tf, err := loadToken()
	if err != nil {
		return nil, err
	}
	return client.New(serverURL, tf.JWT), nil
}
