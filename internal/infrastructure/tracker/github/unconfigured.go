package github

import (
	"context"
	"errors"

	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/ports"
)

var ErrNotConfigured = errors.New("github tracker is not configured: set github.token or github.app credentials")

// Unconfigured stands in when no tracker credentials are present, so commands
// that never touch the tracker still run. Every call fails with
// ErrNotConfigured.
type Unconfigured struct{}

var _ ports.IssueTracker = Unconfigured{}

func (Unconfigured) GetIssue(context.Context, int) (ports.TrackerIssue, error) {
	return ports.TrackerIssue{}, ErrNotConfigured
}

func (Unconfigured) CreateComment(context.Context, int, string) error {
	return ErrNotConfigured
}

func (Unconfigured) AddLabels(context.Context, int, []string) error {
	return ErrNotConfigured
}

func (Unconfigured) RemoveLabel(context.Context, int, string) error {
	return ErrNotConfigured
}

func (Unconfigured) UpdateCommitStatus(context.Context, string, workflow.CommitState, string) error {
	return ErrNotConfigured
}
