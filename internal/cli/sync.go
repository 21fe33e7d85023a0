package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/debtbook/internal/remotesync"
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	syncCmd.Flags().StringP("message", "m", "Upload database", "Commit message")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload a snapshot of the database to GitHub",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		message, _ := cmd.Flags().GetString("message")

		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.uploader == nil {
			return fmt.Errorf("%w: set GITHUB_OWNER and GITHUB_REPO", remotesync.ErrNotConfigured)
		}

		res, err := a.uploader.Upload(cmd.Context(), token, message)
		var apiErr *remotesync.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("failed to upload to GitHub: %s", apiErr.Message)
		}
		if err != nil {
			return err
		}

		verb := "Updated"
		if res.Created {
			verb = "Created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s)\n", verb, res.Path, res.CommitSHA)
		return nil
	},
}
