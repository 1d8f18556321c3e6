package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/internal/app"
	"github.com/doeshing/tai-go/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the command ledger",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.HistoryLedger.List(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "history is empty")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d | %s | %-12s | exit %d | %s\n",
					entry.Sequence,
					entry.Timestamp.Format(time.RFC3339),
					entry.Verdict,
					entry.ExitCode,
					entry.Command)
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultHistoryLimit, "Maximum entries to show")

	replayCmd := &cobra.Command{
		Use:   "replay <sequence>",
		Short: "Re-run a ledger entry through the normal safety checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sequence, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sequence number %q", args[0])
			}
			resp, err := container.QueryService.Replay(cmd.Context(), container.HistoryLedger, sequence)
			RenderResponse(cmd.OutOrStdout(), resp)
			if errors.Is(err, domain.ErrPlanDeclined) || errors.Is(err, domain.ErrStepDeclined) {
				return nil
			}
			return err
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.HistoryLedger.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}

	var dest string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dest == "" {
				return fmt.Errorf("--out is required")
			}
			if err := container.HistoryLedger.ExportJSON(dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", dest)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&dest, "out", "", "Destination file")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the ledger by verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.HistoryLedger.List(0)
			if err != nil {
				return err
			}
			counts := map[domain.Verdict]int{}
			failures := 0
			for _, entry := range entries {
				counts[entry.Verdict]++
				if entry.ExitCode != 0 {
					failures++
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entries:      %d\n", len(entries))
			fmt.Fprintf(out, "safe:         %d\n", counts[domain.VerdictSafe])
			fmt.Fprintf(out, "dangerous:    %d\n", counts[domain.VerdictDangerous])
			fmt.Fprintf(out, "unclassified: %d\n", counts[domain.VerdictUnclassified])
			fmt.Fprintf(out, "nonzero exit: %d\n", failures)
			fmt.Fprintf(out, "ledger path:  %s\n", container.HistoryLedger.Path())
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, replayCmd, clearCmd, exportCmd, statsCmd)
	return historyCmd
}
