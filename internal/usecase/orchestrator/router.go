package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/ports"
)

// routeIssueLabeled maps a labeled notification through the closed
// label -> action table. Labels outside the reserved prefix, and reserved
// labels absent from the table, are informational no-ops.
func (o *Orchestrator) routeIssueLabeled(ctx context.Context, event workflow.IssueLabeledEvent) error {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "orchestrator.router"),
		slog.Int("issue", event.IssueNumber),
		slog.String("label", event.Label),
	)

	if !workflow.IsStoneLabel(event.Label) {
		return nil
	}

	action, ok := workflow.ActionForLabel(event.Label)
	if !ok {
		logging.Info(logCtx, "unrecognized stone label, skipping")
		return nil
	}

	logging.Info(logCtx, "label routed", slog.String("action", string(action)))
	return o.RunWorkflowAction(ctx, action, event.IssueNumber, event.Label)
}

// routePullRequest dispatches on the PR lifecycle action. The switch is
// exhaustive over the known actions with an explicit default arm; unknown
// actions are logged and ignored, never an error.
func (o *Orchestrator) routePullRequest(ctx context.Context, event workflow.PullRequestEvent) error {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "orchestrator.router"),
		slog.Int("pr", event.Number),
		slog.String("action", string(event.Action)),
	)

	switch event.Action {
	case workflow.PRActionOpened, workflow.PRActionReopened:
		return o.handlePROpened(logCtx, event)
	case workflow.PRActionSynchronize:
		// Hook point for future re-test triggering on new commits.
		logging.Info(logCtx, "pull request synchronized")
		return nil
	case workflow.PRActionClosed:
		if event.Merged {
			logging.Info(logCtx, "pull request merged")
		} else {
			logging.Info(logCtx, "pull request abandoned")
		}
		return nil
	default:
		logging.Info(logCtx, "unhandled pull request action, skipping")
		return nil
	}
}

// handlePROpened records the issue back-reference carried in the PR title so
// collaborators can use the linkage.
func (o *Orchestrator) handlePROpened(ctx context.Context, event workflow.PullRequestEvent) error {
	issueNumber, ok := workflow.IssueBackReference(event.Title)
	if !ok {
		logging.Info(ctx, "pull request carries no issue reference")
		return nil
	}

	logging.Info(ctx, "pull request linked to issue", slog.Int("linked_issue", issueNumber))

	if o.repo == nil {
		return nil
	}
	if err := o.repo.RecordPRLink(ctx, ports.PRLinkCreate{
		PRNumber:    event.Number,
		IssueNumber: issueNumber,
		CreatedAt:   nowUTCString(),
	}); err != nil {
		return errs.Wrap(err, "record pr link")
	}
	return nil
}

// RunWorkflowAction is the workflow-run entry point the router invokes. The
// test action runs the issue test flow; the remaining stages hand off to the
// external stage processors, so routing them is recorded and logged here.
func (o *Orchestrator) RunWorkflowAction(ctx context.Context, action workflow.Action, issueNumber int, label string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	if o.repo != nil {
		if err := o.repo.RecordWorkflowRun(ctx, ports.WorkflowRunCreate{
			Action:      string(action),
			IssueNumber: issueNumber,
			Label:       label,
			CreatedAt:   nowUTCString(),
		}); err != nil {
			logging.Warn(ctx, "record workflow run failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	switch action {
	case workflow.ActionTest:
		return o.RunTestsForIssue(ctx, issueNumber)
	case workflow.ActionProcess, workflow.ActionPM, workflow.ActionQA, workflow.ActionFeature, workflow.ActionAudit:
		logging.Info(
			logging.WithAttrs(ctx, slog.String("component", "orchestrator.router")),
			"workflow action handed off",
			slog.String("action", string(action)),
			slog.Int("issue", issueNumber),
		)
		return nil
	default:
		logging.Info(
			logging.WithAttrs(ctx, slog.String("component", "orchestrator.router")),
			"unknown workflow action, skipping",
			slog.String("action", string(action)),
		)
		return nil
	}
}

// ProcessIssue fetches the issue and routes each of its labels through the
// same mapping the event router uses.
func (o *Orchestrator) ProcessIssue(ctx context.Context, issueNumber int) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if o.tracker == nil {
		return errors.New("issue tracker is required")
	}

	issue, err := o.tracker.GetIssue(ctx, issueNumber)
	if err != nil {
		return errs.Wrapf(err, "fetch issue #%d", issueNumber)
	}

	for _, label := range issue.Labels {
		action, ok := workflow.ActionForLabel(label)
		if !ok {
			continue
		}
		if err := o.RunWorkflowAction(ctx, action, issue.Number, label); err != nil {
			return errs.Wrapf(err, "run action %q for issue #%d", action, issue.Number)
		}
	}
	return nil
}
