package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var uploadTag string

var uploadCmd = &cobra.Command{
	Use:   "upload <owner>/<repo> <file>",
	Short: "Upload an environment file as a new version",
	Long: `upload stores the given file as the next version for the repository.
Versions are numbered independently per tag; omit --tag to use the
default tag.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepoArg(args[0])
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}

		c, err := gatewayClient()
		if err != nil {
			return err
		}

		result, err := c.Upload(cmd.Context(), owner, repo, uploadTag, content)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%s: %s", result.Error, result.ErrorDescription)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s/%s version %d (checksum %s).\n", owner, repo, result.Version, result.Checksum)
		return nil
	},
}

var (
	downloadTag     string
	downloadVersion int
	downloadOut     string
)

var downloadCmd = &cobra.Command{
	Use:   "download <owner>/<repo>",
	Short: "Download a stored environment file",
	Long: `download fetches a stored version. --tag selects the latest version
under that tag and takes precedence over --version; with neither flag
the latest version overall is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepoArg(args[0])
		if err != nil {
			return err
		}

		c, err := gatewayClient()
		if err != nil {
			return err
		}

		secret, err := c.Download(cmd.Context(), owner, repo, downloadTag, downloadVersion)
		if err != nil {
			return err
		}

		out := downloadOut
		if out == "" {
			out = ".env"
		}
		if err := os.WriteFile(out, secret.Content, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (version %d, tag %s, uploaded by %s at %s).\n",
			out, secret.Version, secret.Tag, secret.UploadedBy, secret.CreatedAt)
		return nil
	},
}

var (
	deleteVersion int
	deleteAll     bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <owner>/<repo>",
	Short: "Delete stored environment file versions",
	Long: `delete removes a single stored version with --version, or every
version for the repository with --all.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepoArg(args[0])
		if err != nil {
			return err
		}
		if !deleteAll && deleteVersion <= 0 {
			return fmt.Errorf("either --version or --all is required")
		}

		c, err := gatewayClient()
		if err != nil {
			return err
		}

		result, err := c.Delete(cmd.Context(), owner, repo, deleteVersion, deleteAll)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%s: %s", result.Error, result.ErrorDescription)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d version(s) for %s/%s.\n", result.DeletedVersions, owner, repo)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTag, "tag", "t", "", "tag for the uploaded version")
	downloadCmd.Flags().StringVarP(&downloadTag, "tag", "t", "", "download the latest version under this tag")
	downloadCmd.Flags().IntVarP(&downloadVersion, "version", "v", 0, "download this version number")
	downloadCmd.Flags().StringVarP(&downloadOut, "output", "o", "", "output file (default .env)")
	deleteCmd.Flags().IntVarP(&deleteVersion, "version", "v", 0, "version number to delete")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every stored version")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
}
