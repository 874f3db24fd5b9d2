package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/infrastructure/persistence/sqlite/model"
	"github.com/UOR-Foundation/stone/internal/ports"
)

type RunRepository struct {
	db *gorm.DB
}

var _ ports.RunRepository = (*RunRepository)(nil)

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// RecordDelivery inserts the delivery id, or reports false when it collides
// with an already-processed delivery.
func (r *RunRepository) RecordDelivery(ctx context.Context, deliveryID string, eventType string, receivedAt string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	trimmedID := strings.TrimSpace(deliveryID)
	if trimmedID == "" {
		return false, errors.New("delivery id is required")
	}

	row := model.Delivery{
		DeliveryID: trimmedID,
		EventType:  strings.TrimSpace(eventType),
		ReceivedAt: receivedAt,
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "delivery_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert delivery")
	}
	return result.RowsAffected > 0, nil
}

func (r *RunRepository) CreatePipelineRun(ctx context.Context, run ports.PipelineRun) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("run id is required")
	}

	row := model.PipelineRun{
		RunID:      run.RunID,
		Branch:     run.Branch,
		IssueRef:   run.IssueRef,
		Success:    run.Success,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert pipeline run")
	}
	return nil
}

func (r *RunRepository) AppendStageRecord(ctx context.Context, record ports.StageRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(record.RunID) == "" {
		return errors.New("run id is required")
	}

	row := model.StageRecord{
		RunID:           record.RunID,
		Seq:             record.Seq,
		StageType:       record.StageType,
		Success:         record.Success,
		DurationSeconds: record.DurationSeconds,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert stage record")
	}
	return nil
}

func (r *RunRepository) FinishPipelineRun(ctx context.Context, runID string, success bool, finishedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.PipelineRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"success":     success,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update pipeline run")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRunNotFound
	}
	return nil
}

func (r *RunRepository) GetPipelineRun(ctx context.Context, runID string) (ports.PipelineRun, []ports.StageRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PipelineRun{}, nil, err
	}

	var runRow model.PipelineRun
	if err := db.Where("run_id = ?", runID).Take(&runRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PipelineRun{}, nil, ports.ErrRunNotFound
		}
		return ports.PipelineRun{}, nil, errs.Wrap(err, "query pipeline run")
	}

	var stageRows []model.StageRecord
	if err := db.Where("run_id = ?", runID).Order("seq asc").Find(&stageRows).Error; err != nil {
		return ports.PipelineRun{}, nil, errs.Wrap(err, "query stage records")
	}

	stages := make([]ports.StageRecord, 0, len(stageRows))
	for _, row := range stageRows {
		stages = append(stages, ports.StageRecord{
			RunID:           row.RunID,
			Seq:             row.Seq,
			StageType:       row.StageType,
			Success:         row.Success,
			DurationSeconds: row.DurationSeconds,
		})
	}
	return mapPipelineRun(runRow), stages, nil
}

func (r *RunRepository) ListPipelineRuns(ctx context.Context, branch string, limit int) ([]ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.PipelineRun{})
	if trimmed := strings.TrimSpace(branch); trimmed != "" {
		query = query.Where("branch = ?", trimmed)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.PipelineRun
	if err := query.Order("started_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pipeline runs")
	}

	runs := make([]ports.PipelineRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, mapPipelineRun(row))
	}
	return runs, nil
}

func (r *RunRepository) RecordWorkflowRun(ctx context.Context, input ports.WorkflowRunCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(input.Action) == "" {
		return errors.New("action is required")
	}

	row := model.WorkflowRun{
		Action:      input.Action,
		IssueNumber: input.IssueNumber,
		Label:       input.Label,
		CreatedAt:   input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert workflow run")
	}
	return nil
}

func (r *RunRepository) RecordPRLink(ctx context.Context, input ports.PRLinkCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if input.PRNumber <= 0 || input.IssueNumber <= 0 {
		return errors.New("pr number and issue number are required")
	}

	row := model.PRLink{
		PRNumber:    input.PRNumber,
		IssueNumber: input.IssueNumber,
		CreatedAt:   input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert pr link")
	}
	return nil
}

func mapPipelineRun(row model.PipelineRun) ports.PipelineRun {
	return ports.PipelineRun{
		RunID:      row.RunID,
		Branch:     row.Branch,
		IssueRef:   row.IssueRef,
		Success:    row.Success,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
}
