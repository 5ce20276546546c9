package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List your GitHub repositories",
	Long: `repos lists the repositories the authenticated user has access to.
Repositories that hold at least one stored environment file are marked
with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := gatewayClient()
		if err != nil {
			return err
		}

		result, err := c.ListRepos(cmd.Context())
		if err != nil {
			return err
		}
		if result.Error != "" {
			return fmt.Errorf("%s: %s", result.Error, result.ErrorDescription)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, r := range result.Repos {
			marker := " "
			if r.HasSecrets {
				marker = "*"
			}
			visibility := "public"
			if r.Private {
				visibility = "private"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, r.FullName, visibility, r.Description)
		}
		return w.Flush()
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions <owner>/<repo>",
	Short: "List the stored environment file versions for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepoArg(args[0])
		if err != nil {
			return err
		}

		c, err := gatewayClient()
		if err != nil {
			return err
		}

		result, err := c.ListVersions(cmd.Context(), owner, repo)
		if err != nil {
			return err
		}
		if result.Error != "" {
			return fmt.Errorf("%s: %s", result.Error, result.ErrorDescription)
		}

		if len(result.Versions) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No stored versions for %s/%s.\n", owner, repo)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tTAG\tUPLOADED BY\tCREATED AT\tCHECKSUM")
		for _, v := range result.Versions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", v.Version, v.Tag, v.UploadedBy, v.CreatedAt, v.Checksum)
		}
		return w.Flush()
	},
}

// splitRepoArg parses an "owner/repo" argument.
func splitRepoArg(arg string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(arg, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("expected <owner>/<repo>, got %q", arg)
	}
	return owner, repo, nil
}

func init() {
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(versionsCmd)
}
