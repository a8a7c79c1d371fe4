package models

import "time"

// Proposal status values. pending is the only non-terminal state.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// ProjectProposal represents the project_proposals table
type ProjectProposal struct {
	ProposalID   uint      `gorm:"primaryKey;column:proposal_id" json:"proposal_id"`
	Title        string    `gorm:"column:title" json:"title"`
	Description  string    `gorm:"column:description" json:"description"`
	DocumentPath string    `gorm:"column:document_path" json:"document_path"`
	Status       string    `gorm:"column:status" json:"status"`
	StudentID    uint      `gorm:"column:student_id" json:"student_id"`
	SupervisorID *uint     `gorm:"column:supervisor_id" json:"supervisor_id,omitempty"`
	Feedback     string    `gorm:"column:feedback" json:"feedback"`
	SubmittedAt  time.Time `gorm:"column:submitted_at" json:"submitted_at"`

	Student    User  `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Supervisor *User `gorm:"foreignKey:SupervisorID;references:UserID" json:"supervisor,omitempty"`
}

// TableName overrides the table name for ProjectProposal
func (ProjectProposal) TableName() string {
	return "project_proposals"
}

// ValidProposalStatus reports whether status is a known proposal status.
func ValidProposalStatus(status string) bool {
	switch status {
	case ProposalStatusPending, ProposalStatusApproved, ProposalStatusRejected:
		return true
	}
	return false
}
