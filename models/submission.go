package models

import "time"

// Submission represents the submissions table. The submitting student must be
// an enrolled member of the referenced project.
type Submission struct {
	SubmissionID uint      `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	Title        string    `gorm:"column:title" json:"title"`
	FilePath     string    `gorm:"column:file_path" json:"file_path"`
	StudentID    uint      `gorm:"column:student_id" json:"student_id"`
	ProjectID    uint      `gorm:"column:project_id" json:"project_id"`
	SubmittedAt  time.Time `gorm:"column:submitted_at" json:"submitted_at"`

	Student User    `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName overrides the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}

// FeedbackThread represents the feedback_threads table (1:1 with Submission).
type FeedbackThread struct {
	ThreadID     uint `gorm:"primaryKey;column:thread_id" json:"thread_id"`
	SubmissionID uint `gorm:"column:submission_id;unique" json:"submission_id"`

	Submission Submission `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"submission,omitempty"`
}

// TableName overrides the table name for FeedbackThread
func (FeedbackThread) TableName() string {
	return "feedback_threads"
}

// FeedbackMessage represents the feedback_messages table, an append-only log
// ordered by created_at ascending.
type FeedbackMessage struct {
	MessageID uint      `gorm:"primaryKey;column:message_id" json:"message_id"`
	ThreadID  uint      `gorm:"column:thread_id" json:"thread_id"`
	SenderID  uint      `gorm:"column:sender_id" json:"sender_id"`
	Message   string    `gorm:"column:message" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Thread FeedbackThread `gorm:"foreignKey:ThreadID;references:ThreadID" json:"thread,omitempty"`
	Sender User           `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName overrides the table name for FeedbackMessage
func (FeedbackMessage) TableName() string {
	return "feedback_messages"
}
