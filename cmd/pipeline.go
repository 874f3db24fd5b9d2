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

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the staged test pipeline for a branch",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		branch, _ := cmd.Flags().GetString("branch")
		testPath, _ := cmd.Flags().GetString("test-path")
		sha, _ := cmd.Flags().GetString("status-sha")
		pr, _ := cmd.Flags().GetInt("status-pr")

		result, err := orch.RunTestPipeline(ctx, branch, testPath)
		if err != nil {
			return errs.Wrap(err, "run test pipeline")
		}

		if sha != "" {
			if err := orch.UpdatePRStatus(ctx, pr, sha, result); err != nil {
				return errs.Wrap(err, "update pr status")
			}
		}

		for _, stage := range result.Stages {
			glyph := "❌"
			if stage.Success {
				glyph = "✅"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%.1fs)\n", glyph, stage.StageType, stage.DurationSeconds); err != nil {
				return errs.Wrap(err, "write pipeline output")
			}
		}

		if !result.Success {
			return fmt.Errorf("pipeline failed after %d stage(s)", len(result.Stages))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pipelineCmd)

	pipelineCmd.Flags().String("branch", "", "Branch ref to test")
	pipelineCmd.Flags().String("test-path", "./...", "Package path passed to stage commands")
	pipelineCmd.Flags().String("status-sha", "", "Commit SHA to report a status for")
	pipelineCmd.Flags().Int("status-pr", 0, "PR number the status belongs to")
	_ = pipelineCmd.MarkFlagRequired("branch")
}
