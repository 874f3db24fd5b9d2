package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/UOR-Foundation/stone/internal/infrastructure/persistence/sqlite/model"
	"github.com/UOR-Foundation/stone/internal/ports"
)

func setupRunRepository(t *testing.T) *RunRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "stone.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Delivery{},
		&model.PipelineRun{},
		&model.StageRecord{},
		&model.WorkflowRun{},
		&model.PRLink{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewRunRepository(db)
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func TestRecordDeliveryDeduplicates(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	created, err := repo.RecordDelivery(ctx, "delivery-1", "issues.labeled", nowString())
	if err != nil {
		t.Fatalf("RecordDelivery() error = %v", err)
	}
	if !created {
		t.Fatalf("first RecordDelivery() created = false")
	}

	created, err = repo.RecordDelivery(ctx, "delivery-1", "issues.labeled", nowString())
	if err != nil {
		t.Fatalf("RecordDelivery(repeat) error = %v", err)
	}
	if created {
		t.Fatalf("repeat RecordDelivery() created = true")
	}

	created, err = repo.RecordDelivery(ctx, "delivery-2", "pull_request", nowString())
	if err != nil {
		t.Fatalf("RecordDelivery(other) error = %v", err)
	}
	if !created {
		t.Fatalf("distinct RecordDelivery() created = false")
	}
}

func TestRecordDeliveryRequiresID(t *testing.T) {
	repo := setupRunRepository(t)
	if _, err := repo.RecordDelivery(context.Background(), "  ", "issues", nowString()); err == nil {
		t.Fatalf("RecordDelivery() expected error for blank id")
	}
}

func TestPipelineRunRoundTrip(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	run := ports.PipelineRun{
		RunID:      "run-1",
		Branch:     "main",
		Success:    false,
		StartedAt:  nowString(),
		FinishedAt: nowString(),
	}
	if err := repo.CreatePipelineRun(ctx, run); err != nil {
		t.Fatalf("CreatePipelineRun() error = %v", err)
	}
	for i, stage := range []string{"unit", "integration"} {
		if err := repo.AppendStageRecord(ctx, ports.StageRecord{
			RunID:           "run-1",
			Seq:             i + 1,
			StageType:       stage,
			Success:         i == 0,
			DurationSeconds: float64(i) + 0.5,
		}); err != nil {
			t.Fatalf("AppendStageRecord(%s) error = %v", stage, err)
		}
	}

	got, stages, err := repo.GetPipelineRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetPipelineRun() error = %v", err)
	}
	if got.RunID != "run-1" || got.Branch != "main" {
		t.Fatalf("run = %+v", got)
	}
	if len(stages) != 2 || stages[0].StageType != "unit" || stages[1].StageType != "integration" {
		t.Fatalf("stages = %+v", stages)
	}

	if err := repo.FinishPipelineRun(ctx, "run-1", true, nowString()); err != nil {
		t.Fatalf("FinishPipelineRun() error = %v", err)
	}
	got, _, err = repo.GetPipelineRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetPipelineRun() after finish error = %v", err)
	}
	if !got.Success {
		t.Fatalf("run.Success = false after finish")
	}
}

func TestGetPipelineRunNotFound(t *testing.T) {
	repo := setupRunRepository(t)
	if _, _, err := repo.GetPipelineRun(context.Background(), "missing"); !errors.Is(err, ports.ErrRunNotFound) {
		t.Fatalf("GetPipelineRun(missing) error = %v", err)
	}
	if err := repo.FinishPipelineRun(context.Background(), "missing", true, nowString()); !errors.Is(err, ports.ErrRunNotFound) {
		t.Fatalf("FinishPipelineRun(missing) error = %v", err)
	}
}

func TestListPipelineRunsFiltersByBranch(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	for i, branch := range []string{"main", "main", "feature/x"} {
		run := ports.PipelineRun{
			RunID:     "run-" + string(rune('a'+i)),
			Branch:    branch,
			StartedAt: nowString(),
		}
		if err := repo.CreatePipelineRun(ctx, run); err != nil {
			t.Fatalf("CreatePipelineRun(%d) error = %v", i, err)
		}
	}

	runs, err := repo.ListPipelineRuns(ctx, "main", 10)
	if err != nil {
		t.Fatalf("ListPipelineRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}

	runs, err = repo.ListPipelineRuns(ctx, "", 2)
	if err != nil {
		t.Fatalf("ListPipelineRuns(all) error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limited runs = %d, want 2", len(runs))
	}
}

func TestRecordWorkflowRunAndPRLink(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	if err := repo.RecordWorkflowRun(ctx, ports.WorkflowRunCreate{
		Action:      "test",
		IssueNumber: 8,
		Label:       "stone-ready-for-tests",
		CreatedAt:   nowString(),
	}); err != nil {
		t.Fatalf("RecordWorkflowRun() error = %v", err)
	}
	if err := repo.RecordWorkflowRun(ctx, ports.WorkflowRunCreate{IssueNumber: 8}); err == nil {
		t.Fatalf("RecordWorkflowRun() expected error for blank action")
	}

	if err := repo.RecordPRLink(ctx, ports.PRLinkCreate{
		PRNumber:    21,
		IssueNumber: 8,
		CreatedAt:   nowString(),
	}); err != nil {
		t.Fatalf("RecordPRLink() error = %v", err)
	}
	if err := repo.RecordPRLink(ctx, ports.PRLinkCreate{PRNumber: 21}); err == nil {
		t.Fatalf("RecordPRLink() expected error for missing issue")
	}
}
