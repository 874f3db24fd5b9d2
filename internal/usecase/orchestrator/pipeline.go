package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/ports"
)

const defaultTestPath = "./..."

// RunTestPipeline executes the configured stages in order against branch,
// stopping at the first failing stage. Stage failures are data in the result;
// an error means a command could not be spawned at all.
func (o *Orchestrator) RunTestPipeline(ctx context.Context, branch string, testPath string) (workflow.PipelineResult, error) {
	if ctx == nil {
		return workflow.PipelineResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return workflow.PipelineResult{}, errs.Wrap(err, "check context")
	}
	if o.runner == nil {
		return workflow.PipelineResult{}, errors.New("command runner is required")
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return workflow.PipelineResult{}, errors.New("branch is required")
	}
	if strings.TrimSpace(testPath) == "" {
		testPath = defaultTestPath
	}

	runID := uuid.NewString()
	startedAt := nowUTCString()
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "orchestrator.pipeline"),
		slog.String("run_id", runID),
		slog.String("branch", branch),
	)

	var result workflow.PipelineResult
	for _, stage := range o.profile.Stages {
		command := expandCommand(stage.Command, branch, testPath)

		start := time.Now()
		out, err := o.runner.Run(ctx, command)
		if err != nil {
			return workflow.PipelineResult{}, errs.Wrapf(err, "run stage %q", stage.Name)
		}

		stageResult := workflow.StageResult{
			StageType:       stage.Name,
			Success:         out.ExitCode == 0,
			Output:          out.Stdout,
			ErrorOutput:     out.Stderr,
			DurationSeconds: time.Since(start).Seconds(),
		}
		result.Stages = append(result.Stages, stageResult)

		if !stageResult.Success {
			logging.Info(logCtx, "stage failed, short-circuiting pipeline",
				slog.String("stage", stage.Name),
				slog.Int("exit_code", out.ExitCode),
			)
			break
		}
	}

	result.Success = len(result.Stages) == len(o.profile.Stages)
	for _, stage := range result.Stages {
		if !stage.Success {
			result.Success = false
		}
	}

	o.persistPipelineRun(logCtx, runID, branch, 0, startedAt, result)

	logging.Info(logCtx, "pipeline finished",
		slog.Bool("success", result.Success),
		slog.Int("stages_executed", len(result.Stages)),
	)
	return result, nil
}

// persistPipelineRun records the run and its stages. Persistence is an audit
// trail, so failures are logged rather than surfaced.
func (o *Orchestrator) persistPipelineRun(ctx context.Context, runID string, branch string, issueRef int, startedAt string, result workflow.PipelineResult) {
	if o.repo == nil || o.uow == nil {
		return
	}

	finishedAt := nowUTCString()
	err := o.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := o.repo.CreatePipelineRun(txCtx, ports.PipelineRun{
			RunID:      runID,
			Branch:     branch,
			IssueRef:   issueRef,
			Success:    result.Success,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		}); err != nil {
			return err
		}
		for i, stage := range result.Stages {
			if err := o.repo.AppendStageRecord(txCtx, ports.StageRecord{
				RunID:           runID,
				Seq:             i + 1,
				StageType:       stage.StageType,
				Success:         stage.Success,
				DurationSeconds: stage.DurationSeconds,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Warn(ctx, "persist pipeline run failed", slog.Any("err", errs.Loggable(err)))
	}
}

// RunTestsForIssue runs the configured test command for an issue in the
// ready-for-tests stage and reports the outcome back through a comment and
// label transition. Command failure is captured as a failed result; only
// tracker I/O errors propagate.
func (o *Orchestrator) RunTestsForIssue(ctx context.Context, issueNumber int) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if o.tracker == nil {
		return errors.New("issue tracker is required")
	}
	if o.runner == nil {
		return errors.New("command runner is required")
	}
	if o.testCommand == "" {
		return errors.New("test command is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "orchestrator.pipeline"),
		slog.Int("issue", issueNumber),
	)

	issue, err := o.tracker.GetIssue(ctx, issueNumber)
	if err != nil {
		return errs.Wrapf(err, "fetch issue #%d", issueNumber)
	}

	start := time.Now()
	out, runErr := o.runner.Run(ctx, o.testCommand)
	duration := time.Since(start).Seconds()

	success := runErr == nil && out.ExitCode == 0
	if runErr != nil {
		// Spawn failures are a failed test run for the issue flow, not an
		// exception; the issue still gets feedback.
		out = ports.CommandResult{Stderr: runErr.Error(), ExitCode: -1}
	}

	if success {
		body := fmt.Sprintf(
			"## Test Results\n\n✅ All tests passed for issue #%d (%s)\n\nDuration: %.1fs\n\n```\n%s\n```\n",
			issue.Number, issue.Title, duration, excerpt(out.Stdout),
		)
		if err := o.tracker.CreateComment(ctx, issueNumber, body); err != nil {
			return errs.Wrap(err, "post test results comment")
		}
		if err := o.tracker.RemoveLabel(ctx, issueNumber, workflow.LabelReadyForTests); err != nil {
			return errs.Wrap(err, "remove ready-for-tests label")
		}
		if err := o.tracker.AddLabels(ctx, issueNumber, []string{workflow.LabelDocs}); err != nil {
			return errs.Wrap(err, "add next-stage label")
		}

		logging.Info(logCtx, "issue tests passed", slog.Float64("duration_seconds", duration))
		return nil
	}

	body := fmt.Sprintf(
		"## Test Failure\n\n❌ Tests failed for issue #%d (%s)\n\nExit code: %d\n\n```\n%s\n```\n",
		issue.Number, issue.Title, out.ExitCode, excerpt(out.Stderr),
	)
	if err := o.tracker.CreateComment(ctx, issueNumber, body); err != nil {
		return errs.Wrap(err, "post test failure comment")
	}
	if err := o.tracker.AddLabels(ctx, issueNumber, []string{workflow.LabelTestFailure}); err != nil {
		return errs.Wrap(err, "add failure label")
	}

	logging.Info(logCtx, "issue tests failed", slog.Int("exit_code", out.ExitCode))
	return nil
}
