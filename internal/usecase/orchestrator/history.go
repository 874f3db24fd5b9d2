package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/ports"
)

// RecentRuns lists the most recent persisted pipeline runs for branch, newest
// first. An empty branch lists runs across all branches.
func (o *Orchestrator) RecentRuns(ctx context.Context, branch string, limit int) ([]ports.PipelineRun, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if o.repo == nil {
		return nil, errors.New("run repository is required")
	}
	if limit <= 0 {
		limit = 20
	}

	runs, err := o.repo.ListPipelineRuns(ctx, strings.TrimSpace(branch), limit)
	if err != nil {
		return nil, errs.Wrap(err, "list pipeline runs")
	}
	return runs, nil
}

// RunDetail fetches one persisted pipeline run with its stage records.
func (o *Orchestrator) RunDetail(ctx context.Context, runID string) (ports.PipelineRun, []ports.StageRecord, error) {
	if ctx == nil {
		return ports.PipelineRun{}, nil, errors.New("context is required")
	}
	if o.repo == nil {
		return ports.PipelineRun{}, nil, errors.New("run repository is required")
	}

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ports.PipelineRun{}, nil, errors.New("run id is required")
	}

	run, stages, err := o.repo.GetPipelineRun(ctx, runID)
	if err != nil {
		return ports.PipelineRun{}, nil, errs.Wrapf(err, "get pipeline run %s", runID)
	}
	return run, stages, nil
}
