package ports

import "context"

type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes one shell command. A non-zero exit code is data in
// the result, never an error; errors are reserved for failures to spawn or
// observe the process. Implementations enforce their own timeout.
type CommandRunner interface {
	Run(ctx context.Context, command string) (CommandResult, error)
}
