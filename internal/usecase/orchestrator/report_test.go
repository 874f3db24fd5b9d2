package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/UOR-Foundation/stone/internal/domain/workflow"
)

func greenPipeline() workflow.PipelineResult {
	return workflow.PipelineResult{
		Success: true,
		Stages: []workflow.StageResult{
			{StageType: "unit", Success: true, DurationSeconds: 1.2},
			{StageType: "integration", Success: true, DurationSeconds: 3.4},
			{StageType: "e2e", Success: true, DurationSeconds: 9.8},
		},
	}
}

func TestCreateStatusReportAllGreen(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	deployment := &workflow.DeploymentResult{Success: true, DurationSeconds: 2.0, Environment: "staging"}
	report := env.orch.CreateStatusReport(ctx, "main", greenPipeline(), workflow.BuildResult{Success: true, DurationSeconds: 5.0}, deployment)

	if !strings.HasPrefix(report, "## Delivery Status: main\n") {
		t.Fatalf("report header = %q", report)
	}
	for _, section := range []string{"### Tests", "### Build", "### Deployment"} {
		if !containsLine(report, section) {
			t.Fatalf("report missing section %q:\n%s", section, report)
		}
	}
	if strings.Contains(report, "❌") {
		t.Fatalf("green report contains failure glyph:\n%s", report)
	}
	if strings.Count(report, "✅") != 5 {
		t.Fatalf("success glyphs = %d, want 5:\n%s", strings.Count(report, "✅"), report)
	}
}

func TestCreateStatusReportMarksFailures(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	pipeline := workflow.PipelineResult{
		Stages: []workflow.StageResult{
			{StageType: "unit", Success: true, DurationSeconds: 1.0},
			{StageType: "integration", Success: false, DurationSeconds: 2.0},
		},
	}
	report := env.orch.CreateStatusReport(ctx, "main", pipeline, workflow.BuildResult{}, nil)

	if !containsLine(report, "❌ integration") {
		t.Fatalf("report missing failed stage:\n%s", report)
	}
	if containsLine(report, "### Deployment") {
		t.Fatalf("report has deployment section without deployment:\n%s", report)
	}
}

func TestCreateStatusReportDeterministic(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	first := env.orch.CreateStatusReport(ctx, "main", greenPipeline(), workflow.BuildResult{Success: true}, nil)
	second := env.orch.CreateStatusReport(ctx, "main", greenPipeline(), workflow.BuildResult{Success: true}, nil)
	if first != second {
		t.Fatalf("reports differ:\n%s\n---\n%s", first, second)
	}
}

func TestLatestStatusReportRoundTrip(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	want := env.orch.CreateStatusReport(ctx, "feature/x", greenPipeline(), workflow.BuildResult{Success: true}, nil)

	got, ok, err := env.orch.LatestStatusReport(ctx, "feature/x")
	if err != nil {
		t.Fatalf("LatestStatusReport() error = %v", err)
	}
	if !ok || got != want {
		t.Fatalf("LatestStatusReport() = (%q, %v)", got, ok)
	}

	if _, ok, _ := env.orch.LatestStatusReport(ctx, "other-branch"); ok {
		t.Fatalf("LatestStatusReport() found report for untouched branch")
	}
}

func TestUpdatePRStatusSuccess(t *testing.T) {
	env := setupOrchestrator(t)

	if err := env.orch.UpdatePRStatus(context.Background(), 21, "abc123", greenPipeline()); err != nil {
		t.Fatalf("UpdatePRStatus() error = %v", err)
	}

	calls := env.tracker.callsFor("UpdateCommitStatus")
	if len(calls) != 1 {
		t.Fatalf("UpdateCommitStatus calls = %d, want 1", len(calls))
	}
	if calls[0].SHA != "abc123" || calls[0].State != workflow.CommitStateSuccess {
		t.Fatalf("call = %+v", calls[0])
	}
	if calls[0].Body != "All pipeline stages passed" {
		t.Fatalf("description = %q", calls[0].Body)
	}
}

func TestUpdatePRStatusFailureNamesStage(t *testing.T) {
	env := setupOrchestrator(t)

	pipeline := workflow.PipelineResult{
		Stages: []workflow.StageResult{{StageType: "unit", Success: false}},
	}
	if err := env.orch.UpdatePRStatus(context.Background(), 21, "abc123", pipeline); err != nil {
		t.Fatalf("UpdatePRStatus() error = %v", err)
	}

	calls := env.tracker.callsFor("UpdateCommitStatus")
	if len(calls) != 1 || calls[0].State != workflow.CommitStateFailure {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Body != "Stage unit failed" {
		t.Fatalf("description = %q", calls[0].Body)
	}
}

func TestUpdatePRStatusRequiresSHA(t *testing.T) {
	env := setupOrchestrator(t)
	if err := env.orch.UpdatePRStatus(context.Background(), 21, " ", greenPipeline()); err == nil {
		t.Fatalf("UpdatePRStatus() expected error for empty sha")
	}
}
