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

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the build step for a branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		branch, _ := cmd.Flags().GetString("branch")
		result, err := orch.ProcessBuildStep(ctx, branch)
		if err != nil {
			return errs.Wrap(err, "process build step")
		}

		glyph := "❌"
		if result.Success {
			glyph = "✅"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s build (%.1fs)\n", glyph, result.DurationSeconds); err != nil {
			return errs.Wrap(err, "write build output")
		}
		if !result.Success {
			return fmt.Errorf("build failed for branch %s", branch)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("branch", "", "Branch ref to build")
	_ = buildCmd.MarkFlagRequired("branch")
}
