package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/errs"
)

// WebhookResult describes how an inbound delivery was handled. Delivery is
// always acknowledged; nothing in here is an error for the event source.
type WebhookResult struct {
	Handled   bool
	Duplicate bool
	Action    string
}

type issuesPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int `json:"number"`
	} `json:"issue"`
	Label struct {
		Name string `json:"name"`
	} `json:"label"`
}

type pullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Merged bool   `json:"merged"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
}

// ProcessWebhook classifies one inbound event notification and dispatches it
// under the bounded-retry contract. Unknown event types are accepted and
// ignored; processing failures are logged here, never surfaced to the event
// source.
func (o *Orchestrator) ProcessWebhook(ctx context.Context, eventType string, deliveryID string, payload []byte) WebhookResult {
	if ctx == nil {
		ctx = context.Background()
	}

	eventType = strings.TrimSpace(eventType)
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "orchestrator.webhook"),
		slog.String("event_type", eventType),
		slog.String("delivery_id", deliveryID),
	)

	if duplicate := o.recordDelivery(logCtx, deliveryID, eventType); duplicate {
		logging.Info(logCtx, "duplicate delivery acknowledged without re-processing")
		return WebhookResult{Duplicate: true}
	}

	switch {
	case eventType == "issues.labeled" || eventType == "issues":
		event, ok := parseIssueLabeled(logCtx, payload)
		if !ok {
			return WebhookResult{}
		}
		o.dispatchWithRetry(logCtx, "issues.labeled", func(ctx context.Context) error {
			return o.routeIssueLabeled(ctx, event)
		})
		return WebhookResult{Handled: true, Action: "issues.labeled"}

	case strings.HasPrefix(eventType, "pull_request"):
		event, ok := parsePullRequest(logCtx, payload)
		if !ok {
			return WebhookResult{}
		}
		o.dispatchWithRetry(logCtx, eventType, func(ctx context.Context) error {
			return o.routePullRequest(ctx, event)
		})
		return WebhookResult{Handled: true, Action: string(event.Action)}

	default:
		logging.Info(logCtx, "unrecognized event type accepted and ignored")
		return WebhookResult{}
	}
}

// dispatchWithRetry wraps the handler in the bounded backoff policy and
// absorbs exhausted failures at this outer boundary.
func (o *Orchestrator) dispatchWithRetry(ctx context.Context, name string, handler func(ctx context.Context) error) {
	_, err := Retry(ctx, o.retryPolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, handler(ctx)
	})
	if err != nil {
		logging.Error(ctx, "event processing failed",
			slog.String("handler", name),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

// recordDelivery reports true when the delivery id was already processed.
// Recording is best-effort: an unavailable audit store never blocks ingestion.
func (o *Orchestrator) recordDelivery(ctx context.Context, deliveryID string, eventType string) bool {
	if o.repo == nil || strings.TrimSpace(deliveryID) == "" {
		return false
	}

	created, err := o.repo.RecordDelivery(ctx, deliveryID, eventType, nowUTCString())
	if err != nil {
		logging.Warn(ctx, "record delivery failed", slog.Any("err", errs.Loggable(err)))
		return false
	}
	return !created
}

func parseIssueLabeled(ctx context.Context, payload []byte) (workflow.IssueLabeledEvent, bool) {
	var parsed issuesPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		logging.Warn(ctx, "malformed issues payload ignored", slog.Any("err", errs.Loggable(err)))
		return workflow.IssueLabeledEvent{}, false
	}
	if parsed.Action != "" && parsed.Action != "labeled" {
		logging.Info(ctx, "issues action outside labeled, skipping", slog.String("action", parsed.Action))
		return workflow.IssueLabeledEvent{}, false
	}
	if parsed.Issue.Number <= 0 || strings.TrimSpace(parsed.Label.Name) == "" {
		logging.Info(ctx, "issues payload missing issue number or label, skipping")
		return workflow.IssueLabeledEvent{}, false
	}

	return workflow.IssueLabeledEvent{
		IssueNumber: parsed.Issue.Number,
		Label:       strings.TrimSpace(parsed.Label.Name),
	}, true
}

func parsePullRequest(ctx context.Context, payload []byte) (workflow.PullRequestEvent, bool) {
	var parsed pullRequestPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		logging.Warn(ctx, "malformed pull request payload ignored", slog.Any("err", errs.Loggable(err)))
		return workflow.PullRequestEvent{}, false
	}
	if parsed.PullRequest.Number <= 0 {
		logging.Info(ctx, "pull request payload missing number, skipping")
		return workflow.PullRequestEvent{}, false
	}

	return workflow.PullRequestEvent{
		Number:  parsed.PullRequest.Number,
		Action:  workflow.PullRequestAction(strings.TrimSpace(parsed.Action)),
		Merged:  parsed.PullRequest.Merged,
		Title:   parsed.PullRequest.Title,
		HeadSHA: parsed.PullRequest.Head.SHA,
	}, true
}
