package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
)

const (
	glyphSuccess = "✅"
	glyphFailure = "❌"
)

// CreateStatusReport renders the composite delivery report: one section per
// stage group, one glyph-prefixed line per entry. Output is deterministic for
// identical inputs. The latest report per branch is cached best-effort.
func (o *Orchestrator) CreateStatusReport(ctx context.Context, branch string, pipeline workflow.PipelineResult, build workflow.BuildResult, deployment *workflow.DeploymentResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Delivery Status: %s\n\n", strings.TrimSpace(branch))

	b.WriteString("### Tests\n")
	if len(pipeline.Stages) == 0 {
		b.WriteString(statusLine(false, "no stages executed", 0))
	}
	for _, stage := range pipeline.Stages {
		b.WriteString(statusLine(stage.Success, stage.StageType, stage.DurationSeconds))
	}

	b.WriteString("\n### Build\n")
	b.WriteString(statusLine(build.Success, "build", build.DurationSeconds))

	if deployment != nil {
		b.WriteString("\n### Deployment\n")
		b.WriteString(statusLine(deployment.Success, "deploy to "+deployment.Environment, deployment.DurationSeconds))
	}

	report := b.String()
	o.cacheReportBestEffort(ctx, branch, report)
	return report
}

func statusLine(success bool, label string, durationSeconds float64) string {
	glyph := glyphFailure
	if success {
		glyph = glyphSuccess
	}
	return fmt.Sprintf("%s %s (%.1fs)\n", glyph, label, durationSeconds)
}

func (o *Orchestrator) cacheReportBestEffort(ctx context.Context, branch string, report string) {
	if o.cache == nil || ctx == nil {
		return
	}
	if err := o.cache.Set(ctx, reportCacheKey(branch), report, 0); err != nil {
		logging.Warn(ctx, "cache status report failed", slog.Any("err", errs.Loggable(err)))
	}
}

// LatestStatusReport returns the most recently rendered report for branch.
func (o *Orchestrator) LatestStatusReport(ctx context.Context, branch string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if o.cache == nil {
		return "", false, errors.New("cache is required")
	}
	return o.cache.Get(ctx, reportCacheKey(branch))
}

func reportCacheKey(branch string) string {
	return "status_report:" + strings.TrimSpace(branch)
}

// UpdatePRStatus reduces the pipeline outcome to the tracker's commit-status
// vocabulary and issues exactly one status update.
func (o *Orchestrator) UpdatePRStatus(ctx context.Context, prNumber int, commitSHA string, pipeline workflow.PipelineResult) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if o.tracker == nil {
		return errors.New("issue tracker is required")
	}

	commitSHA = strings.TrimSpace(commitSHA)
	if commitSHA == "" {
		return errors.New("commit sha is required")
	}

	state := workflow.CommitStateFor(pipeline)
	description := "All pipeline stages passed"
	if failed, ok := pipeline.FailedStage(); ok {
		description = fmt.Sprintf("Stage %s failed", failed.StageType)
	} else if !pipeline.Success {
		description = "Pipeline did not complete"
	}

	if err := o.tracker.UpdateCommitStatus(ctx, commitSHA, state, description); err != nil {
		return errs.Wrapf(err, "update commit status for PR #%d", prNumber)
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "orchestrator.report")),
		"pr status updated",
		slog.Int("pr", prNumber),
		slog.String("state", string(state)),
	)
	return nil
}
