/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
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

// initCmd regenerates workflow definitions and the database schema. Both are
// idempotent, so re-running init is always safe.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize workflow definitions and database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		if err := orch.Initialize(ctx); err != nil {
			logging.Error(ctx, "initialize workflows failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize workflows")
		}

		logging.Info(ctx, "init finished", slog.String("workflow_dir", app.Config.Workflow.Dir))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "initialized: schema=%s workflows=%s\n", app.Config.Database.DSN, app.Config.Workflow.Dir); err != nil {
			return errs.Wrap(err, "write init output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initCmd)
}
