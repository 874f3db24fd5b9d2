package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/errs"
)

// Initialize regenerates the workflow definition files. Regenerating over
// already-existing definitions is not an error; Initialize may be run any
// number of times.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if o.writer == nil {
		return errors.New("workflow writer is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "orchestrator"))
	if err := o.writer.EnsureWorkflows(ctx); err != nil {
		return errs.Wrap(err, "regenerate workflow definitions")
	}

	logging.Info(logCtx, "workflow definitions regenerated")
	return nil
}
