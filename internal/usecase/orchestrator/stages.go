package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/ports"
)

// ProcessBuildStep invokes the build command once for branch. No internal
// retry; a non-zero exit is a failed result, not an error.
func (o *Orchestrator) ProcessBuildStep(ctx context.Context, branch string) (workflow.BuildResult, error) {
	if ctx == nil {
		return workflow.BuildResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return workflow.BuildResult{}, errs.Wrap(err, "check context")
	}
	if o.runner == nil {
		return workflow.BuildResult{}, errors.New("command runner is required")
	}
	if o.buildCommand == "" {
		return workflow.BuildResult{}, errors.New("build command is required")
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return workflow.BuildResult{}, errors.New("branch is required")
	}

	out, duration, err := o.runStageCommand(ctx, expandCommand(o.buildCommand, branch, ""))
	if err != nil {
		return workflow.BuildResult{}, errs.Wrap(err, "run build command")
	}

	result := workflow.BuildResult{
		Success:         out.ExitCode == 0,
		Output:          combinedOutput(out),
		DurationSeconds: duration,
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "orchestrator.stages")),
		"build step finished",
		slog.String("branch", branch),
		slog.Bool("success", result.Success),
	)
	return result, nil
}

// ProcessDeployment invokes the deploy command configured for environment.
func (o *Orchestrator) ProcessDeployment(ctx context.Context, environment string, branch string) (workflow.DeploymentResult, error) {
	if ctx == nil {
		return workflow.DeploymentResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return workflow.DeploymentResult{}, errs.Wrap(err, "check context")
	}
	if o.runner == nil {
		return workflow.DeploymentResult{}, errors.New("command runner is required")
	}

	environment = strings.TrimSpace(environment)
	branch = strings.TrimSpace(branch)
	if environment == "" {
		return workflow.DeploymentResult{}, errors.New("environment is required")
	}
	if branch == "" {
		return workflow.DeploymentResult{}, errors.New("branch is required")
	}

	command, ok := o.deployCommands[environment]
	if !ok || strings.TrimSpace(command) == "" {
		return workflow.DeploymentResult{}, fmt.Errorf("no deploy command configured for environment %q", environment)
	}

	out, duration, err := o.runStageCommand(ctx, expandCommand(command, branch, ""))
	if err != nil {
		return workflow.DeploymentResult{}, errs.Wrapf(err, "run deploy command for %q", environment)
	}

	result := workflow.DeploymentResult{
		Success:         out.ExitCode == 0,
		Output:          combinedOutput(out),
		DurationSeconds: duration,
		Environment:     environment,
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "orchestrator.stages")),
		"deployment finished",
		slog.String("environment", environment),
		slog.String("branch", branch),
		slog.Bool("success", result.Success),
	)
	return result, nil
}

func (o *Orchestrator) runStageCommand(ctx context.Context, command string) (ports.CommandResult, float64, error) {
	start := time.Now()
	out, err := o.runner.Run(ctx, command)
	if err != nil {
		return ports.CommandResult{}, 0, err
	}
	return out, time.Since(start).Seconds(), nil
}

func combinedOutput(out ports.CommandResult) string {
	stdout := strings.TrimSpace(out.Stdout)
	stderr := strings.TrimSpace(out.Stderr)
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}
