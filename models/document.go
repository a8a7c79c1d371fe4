package models

import "time"

// Document type values.
const (
	DocumentTypeReport       = "report"
	DocumentTypeCode         = "code"
	DocumentTypePresentation = "presentation"
	DocumentTypeOther        = "other"
)

// Document represents the documents table. Versioning is append-only:
// (project_id, name, version) is unique and existing rows are never
// overwritten by a new upload.
type Document struct {
	DocumentID   uint      `gorm:"primaryKey;column:document_id" json:"document_id"`
	ProjectID    uint      `gorm:"column:project_id;uniqueIndex:uniq_project_name_version" json:"project_id"`
	FilePath     string    `gorm:"column:file_path" json:"file_path"`
	Name         string    `gorm:"column:name;uniqueIndex:uniq_project_name_version" json:"name"`
	Type         string    `gorm:"column:type" json:"type"`
	Version      int       `gorm:"column:version;uniqueIndex:uniq_project_name_version" json:"version"`
	UploadedByID *uint     `gorm:"column:uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
	Description  string    `gorm:"column:description" json:"description"`

	Project    Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	UploadedBy *User   `gorm:"foreignKey:UploadedByID;references:UserID" json:"uploader,omitempty"`
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeReport, DocumentTypeCode, DocumentTypePresentation, DocumentTypeOther:
		return true
	}
	return false
}
