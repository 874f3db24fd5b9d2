package ports

import "context"

// WorkflowWriter regenerates the on-disk workflow definition files. Writing
// over already-existing definitions must succeed (idempotent).
type WorkflowWriter interface {
	EnsureWorkflows(ctx context.Context) error
}
