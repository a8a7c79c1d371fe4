package models

import "time"

// Project status values. completed is terminal.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusOnHold    = "on_hold"
)

// Project represents the projects table. Exactly one project may reference a
// given approved proposal (unique proposal_id).
type Project struct {
	ProjectID    uint       `gorm:"primaryKey;column:project_id" json:"project_id"`
	ProposalID   uint       `gorm:"column:proposal_id;unique" json:"proposal_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Description  string     `gorm:"column:description" json:"description"`
	SupervisorID *uint      `gorm:"column:supervisor_id" json:"supervisor_id,omitempty"`
	Status       string     `gorm:"column:status" json:"status"`
	StartDate    *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`

	Proposal   ProjectProposal `gorm:"foreignKey:ProposalID;references:ProposalID" json:"proposal,omitempty"`
	Supervisor *User           `gorm:"foreignKey:SupervisorID;references:UserID" json:"supervisor,omitempty"`
	Students   []User          `gorm:"many2many:project_students;foreignKey:ProjectID;joinForeignKey:project_id;references:UserID;joinReferences:user_id" json:"students,omitempty"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// HasStudent reports whether the user is an enrolled member of the project.
func (p *Project) HasStudent(userID uint) bool {
	for _, s := range p.Students {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// StudentIDs returns the ids of the enrolled students.
func (p *Project) StudentIDs() []uint {
	ids := make([]uint, 0, len(p.Students))
	for _, s := range p.Students {
		ids = append(ids, s.UserID)
	}
	return ids
}

// ValidProjectStatus reports whether status is a known project status.
func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}
