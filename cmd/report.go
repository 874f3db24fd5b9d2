package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/UOR-Foundation/stone/internal/bootstrap"
	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/usecase/orchestrator"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest delivery status report for a branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		branch, _ := cmd.Flags().GetString("branch")
		listRuns, _ := cmd.Flags().GetInt("runs")

		if listRuns > 0 {
			runs, err := orch.RecentRuns(ctx, branch, listRuns)
			if err != nil {
				return errs.Wrap(err, "list recent runs")
			}
			for _, run := range runs {
				glyph := "❌"
				if run.Success {
					glyph = "✅"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", glyph, run.RunID, run.Branch, run.StartedAt); err != nil {
					return errs.Wrap(err, "write run output")
				}
			}
			return nil
		}

		report, ok, err := orch.LatestStatusReport(ctx, branch)
		if err != nil {
			return errs.Wrap(err, "load status report")
		}
		if !ok {
			return fmt.Errorf("no status report recorded for branch %s", branch)
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), report); err != nil {
			return errs.Wrap(err, "write report output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("branch", "", "Branch ref the report was rendered for")
	reportCmd.Flags().Int("runs", 0, "List the N most recent pipeline runs instead of the report")
	_ = reportCmd.MarkFlagRequired("branch")
}
