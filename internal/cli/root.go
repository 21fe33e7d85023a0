// Package cli implements the debtbook command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/debtbook/internal/config"
	"github.com/mmynk/debtbook/pkg/logging"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "debtbook",
	Short: "Personal debt ledger with an audit trail",
	Long: `debtbook records who owes whom, keeps an append-only history of every
change, and summarises unpaid balances per borrower and lender.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
			loaded.Database.Path = dbPath
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		logging.SetupWithLevel(level)

		cfg = loaded
		slog.Debug("Configuration loaded", "db", cfg.Database.Path, "port", cfg.Server.Port)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (overrides DB_PATH)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("debtbook: %w", err)
	}
	return nil
}
