package orchestrator

import (
	"strings"
	"time"

	"github.com/UOR-Foundation/stone/internal/ports"
)

// Orchestrator is the facade external callers invoke. All collaborators are
// injected; the facade holds only read-only configuration after construction,
// so concurrent invocations share no mutable state.
type Orchestrator struct {
	tracker ports.IssueTracker
	runner  ports.CommandRunner
	writer  ports.WorkflowWriter
	repo    ports.RunRepository
	uow     ports.UnitOfWork
	cache   ports.Cache

	profile        Profile
	testCommand    string
	buildCommand   string
	deployCommands map[string]string
	retryPolicy    RetryPolicy
}

type Deps struct {
	Tracker ports.IssueTracker
	Runner  ports.CommandRunner
	Writer  ports.WorkflowWriter
	Repo    ports.RunRepository
	UOW     ports.UnitOfWork
	Cache   ports.Cache
}

type Commands struct {
	Test   string
	Build  string
	Deploy map[string]string
}

// New wires the orchestrator. The stage profile and commands are fixed at
// construction time.
func New(deps Deps, profile Profile, commands Commands) *Orchestrator {
	return &Orchestrator{
		tracker:        deps.Tracker,
		runner:         deps.Runner,
		writer:         deps.Writer,
		repo:           deps.Repo,
		uow:            deps.UOW,
		cache:          deps.Cache,
		profile:        profile,
		testCommand:    strings.TrimSpace(commands.Test),
		buildCommand:   strings.TrimSpace(commands.Build),
		deployCommands: commands.Deploy,
		retryPolicy:    RetryPolicy{MaxAttempts: defaultMaxAttempts, InitialDelay: defaultInitialDelay},
	}
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// expandCommand substitutes the branch and test-path placeholders a stage
// command may carry.
func expandCommand(command string, branch string, testPath string) string {
	out := strings.ReplaceAll(command, "{branch}", strings.TrimSpace(branch))
	out = strings.ReplaceAll(out, "{path}", strings.TrimSpace(testPath))
	return strings.TrimSpace(out)
}

const outputExcerptLimit = 4000

// excerpt bounds collaborator output before it lands in a tracker comment.
func excerpt(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "(no output)"
	}
	if len(trimmed) <= outputExcerptLimit {
		return trimmed
	}
	return trimmed[:outputExcerptLimit] + "\n... (truncated)"
}
