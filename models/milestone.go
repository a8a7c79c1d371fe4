package models

import "time"

// Milestone status values. overdue is derived from due_date, never set by a
// user directly; completed is terminal.
const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusCompleted = "completed"
	MilestoneStatusOverdue   = "overdue"
)

// Milestone represents the milestones table
type Milestone struct {
	MilestoneID    uint       `gorm:"primaryKey;column:milestone_id" json:"milestone_id"`
	ProjectID      uint       `gorm:"column:project_id" json:"project_id"`
	Title          string     `gorm:"column:title" json:"title"`
	Description    string     `gorm:"column:description" json:"description"`
	DueDate        time.Time  `gorm:"column:due_date" json:"due_date"`
	Status         string     `gorm:"column:status" json:"status"`
	CompletionDate *time.Time `gorm:"column:completion_date" json:"completion_date,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName overrides the table name for Milestone
func (Milestone) TableName() string {
	return "milestones"
}
