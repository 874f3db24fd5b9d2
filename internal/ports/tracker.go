package ports

import (
	"context"
	"errors"

	"github.com/UOR-Foundation/stone/internal/domain/workflow"
)

var ErrIssueNotFound = errors.New("tracker issue not found")

type TrackerIssue struct {
	Number int
	Title  string
	Labels []string
}

// IssueTracker is the narrow tracker-API surface the engine depends on.
// Implementations surface rate-limit conditions wrapped with
// workflow.ErrRateLimited so retry classification stays structural.
type IssueTracker interface {
	GetIssue(ctx context.Context, number int) (TrackerIssue, error)
	CreateComment(ctx context.Context, number int, body string) error
	AddLabels(ctx context.Context, number int, labels []string) error
	RemoveLabel(ctx context.Context, number int, label string) error
	UpdateCommitStatus(ctx context.Context, sha string, state workflow.CommitState, description string) error
}
