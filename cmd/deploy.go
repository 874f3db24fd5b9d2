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

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the deploy command configured for an environment",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		environment, _ := cmd.Flags().GetString("env")
		branch, _ := cmd.Flags().GetString("branch")

		result, err := orch.ProcessDeployment(ctx, environment, branch)
		if err != nil {
			return errs.Wrap(err, "process deployment")
		}

		glyph := "❌"
		if result.Success {
			glyph = "✅"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s deploy %s (%.1fs)\n", glyph, result.Environment, result.DurationSeconds); err != nil {
			return errs.Wrap(err, "write deploy output")
		}
		if !result.Success {
			return fmt.Errorf("deployment to %s failed", environment)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().String("env", "", "Target environment, e.g. staging or production")
	deployCmd.Flags().String("branch", "", "Branch ref to deploy")
	_ = deployCmd.MarkFlagRequired("env")
	_ = deployCmd.MarkFlagRequired("branch")
}
