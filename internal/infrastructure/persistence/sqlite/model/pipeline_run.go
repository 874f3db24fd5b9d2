package model

type PipelineRun struct {
	RunID      string `gorm:"column:run_id;primaryKey"`
	Branch     string `gorm:"column:branch;type:text;not null;index"`
	IssueRef   int    `gorm:"column:issue_ref;not null;default:0"`
	Success    bool   `gorm:"column:success;not null;default:0"`
	StartedAt  string `gorm:"column:started_at;type:text;not null"`
	FinishedAt string `gorm:"column:finished_at;type:text;not null;default:''"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

type StageRecord struct {
	ID              uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID           string  `gorm:"column:run_id;type:text;not null;index"`
	Seq             int     `gorm:"column:seq;not null"`
	StageType       string  `gorm:"column:stage_type;type:text;not null"`
	Success         bool    `gorm:"column:success;not null;default:0"`
	DurationSeconds float64 `gorm:"column:duration_seconds;not null;default:0"`
}

func (StageRecord) TableName() string {
	return "stage_records"
}
