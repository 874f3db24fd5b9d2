package ports

import (
	"context"
	"errors"
)

var ErrRunNotFound = errors.New("pipeline run not found")

type PipelineRun struct {
	RunID      string
	Branch     string
	IssueRef   int
	Success    bool
	StartedAt  string
	FinishedAt string
}

type StageRecord struct {
	RunID           string
	Seq             int
	StageType       string
	Success         bool
	DurationSeconds float64
}

type WorkflowRunCreate struct {
	Action      string
	IssueNumber int
	Label       string
	CreatedAt   string
}

type PRLinkCreate struct {
	PRNumber    int
	IssueNumber int
	CreatedAt   string
}

// RunRepository persists the engine's audit trail: webhook deliveries (for the
// retryable-delivery dedup contract), pipeline runs with their stage records,
// routed workflow actions, and PR/issue associations.
type RunRepository interface {
	// RecordDelivery returns false when the delivery id was already seen.
	RecordDelivery(ctx context.Context, deliveryID string, eventType string, receivedAt string) (bool, error)

	CreatePipelineRun(ctx context.Context, run PipelineRun) error
	AppendStageRecord(ctx context.Context, record StageRecord) error
	FinishPipelineRun(ctx context.Context, runID string, success bool, finishedAt string) error
	GetPipelineRun(ctx context.Context, runID string) (PipelineRun, []StageRecord, error)
	ListPipelineRuns(ctx context.Context, branch string, limit int) ([]PipelineRun, error)

	RecordWorkflowRun(ctx context.Context, input WorkflowRunCreate) error
	RecordPRLink(ctx context.Context, input PRLinkCreate) error
}
