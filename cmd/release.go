package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/UOR-Foundation/stone/internal/bootstrap"
	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/usecase/orchestrator"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run tests, build and optional deploy for a branch, then print the status report",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		branch, _ := cmd.Flags().GetString("branch")
		testPath, _ := cmd.Flags().GetString("test-path")
		environment, _ := cmd.Flags().GetString("env")

		pipeline, err := orch.RunTestPipeline(ctx, branch, testPath)
		if err != nil {
			return errs.Wrap(err, "run test pipeline")
		}

		build := workflow.BuildResult{}
		if pipeline.Success {
			build, err = orch.ProcessBuildStep(ctx, branch)
			if err != nil {
				return errs.Wrap(err, "process build step")
			}
		}

		var deployment *workflow.DeploymentResult
		if environment != "" && pipeline.Success && build.Success {
			result, err := orch.ProcessDeployment(ctx, environment, branch)
			if err != nil {
				return errs.Wrap(err, "process deployment")
			}
			deployment = &result
		}

		report := orch.CreateStatusReport(ctx, branch, pipeline, build, deployment)
		if _, err := fmt.Fprint(cmd.OutOrStdout(), report); err != nil {
			return errs.Wrap(err, "write report output")
		}

		if !pipeline.Success || !build.Success || (deployment != nil && !deployment.Success) {
			return fmt.Errorf("release for branch %s did not complete", branch)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().String("branch", "", "Branch ref to release")
	releaseCmd.Flags().String("test-path", "./...", "Package path passed to pipeline stage commands")
	releaseCmd.Flags().String("env", "", "Deploy to this environment after a green build")
	_ = releaseCmd.MarkFlagRequired("branch")
}
