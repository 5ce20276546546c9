package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurs0n/envini-gate/internal/client"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with GitHub using the device flow",
	Long: `login starts a GitHub device flow. Open the printed verification URL,
enter the user code, and the command waits until GitHub confirms the
authorization or the flow times out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := client.New(serverURL, "")

		handle, err := c.StartGitHubAuth(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Open %s and enter the code:\n\n    %s\n\nWaiting for authorization...\n", handle.VerificationURI, handle.UserCode)

		result, err := c.WaitForLogin(ctx, handle)
		if err != nil {
			return err
		}

		tf := &tokenFile{JWT: result.JWT, SessionID: result.SessionID}
		if user, err := c.User(ctx); err == nil && user.Error == "" {
			tf.UserLogin = user.UserLogin
		}
		if err := saveToken(tf); err != nil {
			return err
		}

		if tf.UserLogin != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", tf.UserLogin)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the current session and remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := gatewayClient()
		if err != nil {
			return err
		}

		result, err := c.Logout(cmd.Context())
		if err != nil {
			return err
		}
		if err := clearToken(); err != nil {
			return err
		}

		if !result.Success {
			fmt.Fprintln(cmd.OutOrStdout(), "Session was already invalid; local token removed.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the GitHub identity behind the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := gatewayClient()
		if err != nil {
			return err
		}

		user, err := c.User(cmd.Context())
		if err != nil {
			return err
		}
		if user.Error != "" {
			return fmt.Errorf("%s: %s", user.Error, user.ErrorDescription)
		}

		if user.Name != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.UserLogin, user.Name)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), user.UserLogin)
		}
		if user.HTMLURL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), user.HTMLURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
