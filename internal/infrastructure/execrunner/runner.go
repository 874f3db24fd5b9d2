package execrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/UOR-Foundation/stone/internal/ports"
)

const defaultTimeout = 30 * time.Minute

// Runner executes commands through the system shell. Non-zero exit codes are
// reported in the result; an error means the process could not be run at all.
type Runner struct {
	timeout time.Duration
}

var _ ports.CommandRunner = (*Runner)(nil)

func New(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{timeout: timeout}
}

func (r *Runner) Run(ctx context.Context, command string) (ports.CommandResult, error) {
	if ctx == nil {
		return ports.CommandResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.CommandResult{}, err
	}

	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return ports.CommandResult{}, errors.New("command is required")
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", trimmed)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command timed out after %s", r.timeout))
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return ports.CommandResult{}, fmt.Errorf("spawn command: %w", runErr)
	}

	return result, nil
}

func appendLine(base string, line string) string {
	if strings.TrimSpace(base) == "" {
		return line
	}
	if strings.HasSuffix(base, "\n") {
		return base + line
	}
	return base + "\n" + line
}
