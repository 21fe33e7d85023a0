package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/debtbook/internal/models"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show (0 for all)")
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print unpaid totals per borrower and lender",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.balances.UnpaidSummary(cmd.Context())
		if err != nil {
			return err
		}
		return writeSummary(cmd.OutOrStdout(), summary)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the most recent history entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.ledger.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), entries)
	},
}

func writeSummary(w io.Writer, summary []models.PairBalance) error {
	if len(summary) == 0 {
		_, err := fmt.Fprintln(w, "Nothing is owed.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BORROWER\tLENDER\tDEBTS\tUNPAID")
	for _, p := range summary {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.BorrowerName, p.LenderName, p.Count, models.FormatAmount(p.TotalUnpaid))
	}
	return tw.Flush()
}

func writeHistory(w io.Writer, entries []models.History) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Details)
	}
	return tw.Flush()
}
