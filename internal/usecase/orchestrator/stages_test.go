package orchestrator

import (
	"context"
	"testing"
)

func TestProcessBuildStepSuccess(t *testing.T) {
	env := setupOrchestrator(t)
	env.runner.stdout["go build ./..."] = ""

	result, err := env.orch.ProcessBuildStep(context.Background(), "main")
	if err != nil {
		t.Fatalf("ProcessBuildStep() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("result.Success = false")
	}
}

func TestProcessBuildStepFailureIsData(t *testing.T) {
	env := setupOrchestrator(t)
	env.runner.exitCodes["go build ./..."] = 1
	env.runner.stderr["go build ./..."] = "undefined: login"

	result, err := env.orch.ProcessBuildStep(context.Background(), "main")
	if err != nil {
		t.Fatalf("ProcessBuildStep() error = %v", err)
	}
	if result.Success {
		t.Fatalf("result.Success = true on non-zero exit")
	}
	if !containsLine(result.Output, "undefined: login") {
		t.Fatalf("result.Output = %q", result.Output)
	}
}

func TestProcessBuildStepRequiresBranch(t *testing.T) {
	env := setupOrchestrator(t)
	if _, err := env.orch.ProcessBuildStep(context.Background(), ""); err == nil {
		t.Fatalf("ProcessBuildStep() expected error")
	}
}

func TestProcessDeploymentExpandsBranch(t *testing.T) {
	env := setupOrchestrator(t)

	result, err := env.orch.ProcessDeployment(context.Background(), "staging", "release/1.2")
	if err != nil {
		t.Fatalf("ProcessDeployment() error = %v", err)
	}
	if !result.Success || result.Environment != "staging" {
		t.Fatalf("result = %+v", result)
	}

	commands := env.runner.ranCommands()
	if len(commands) != 1 || commands[0] != "deploy.sh staging release/1.2" {
		t.Fatalf("commands = %v", commands)
	}
}

func TestProcessDeploymentUnknownEnvironment(t *testing.T) {
	env := setupOrchestrator(t)

	if _, err := env.orch.ProcessDeployment(context.Background(), "production", "main"); err == nil {
		t.Fatalf("ProcessDeployment() expected error for unconfigured environment")
	}
	if got := env.runner.ranCommands(); len(got) != 0 {
		t.Fatalf("commands ran = %v", got)
	}
}
