package model

type WorkflowRun struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Action      string `gorm:"column:action;type:text;not null"`
	IssueNumber int    `gorm:"column:issue_number;not null;index"`
	Label       string `gorm:"column:label;type:text;not null;default:''"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (WorkflowRun) TableName() string {
	return "workflow_runs"
}

type PRLink struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PRNumber    int    `gorm:"column:pr_number;not null;index"`
	IssueNumber int    `gorm:"column:issue_number;not null;index"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (PRLink) TableName() string {
	return "pr_links"
}
