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

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Route one issue's labels through the workflow mapping",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		number, _ := cmd.Flags().GetInt("number")
		if err := orch.ProcessIssue(ctx, number); err != nil {
			return errs.Wrapf(err, "process issue #%d", number)
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "issue #%d processed\n", number); err != nil {
			return errs.Wrap(err, "write issue output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(issueCmd)

	issueCmd.Flags().Int("number", 0, "Issue number")
	_ = issueCmd.MarkFlagRequired("number")
}
