package services

import (
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// DocumentInput carries the fields for a new document version. The version
// number is never supplied by callers; the store assigns the next one per
// (project, name) under its serialization point.
type DocumentInput struct {
	ProjectID   uint
	Name        string
	Type        string
	FilePath    string
	Description string
}

type DocumentService struct {
	store store.Store
	authz *Authorizer
	now   func() time.Time
}

func NewDocumentService(st store.Store, authz *Authorizer) *DocumentService {
	return &DocumentService{store: st, authz: authz, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *DocumentService) SetClock(now func() time.Time) {
	s.now = now
}

// Create records a new document version on a project visible to the actor.
// Re-uploading an existing name appends the next version; nothing is ever
// overwritten.
func (s *DocumentService) Create(actor *models.User, input DocumentInput) (*models.Document, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityDocument, nil); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, Validationf("document name is required")
	}
	if input.Type == "" {
		input.Type = models.DocumentTypeOther
	}
	if !models.ValidDocumentType(input.Type) {
		return nil, Validationf("unknown document type %q", input.Type)
	}

	project, err := s.store.GetProject(input.ProjectID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityProject, project); err != nil {
		return nil, err
	}

	d := &models.Document{
		ProjectID:    input.ProjectID,
		FilePath:     input.FilePath,
		Name:         input.Name,
		Type:         input.Type,
		UploadedByID: &actor.UserID,
		UploadedAt:   s.now(),
		Description:  input.Description,
	}
	if err := s.store.CreateDocument(d); err != nil {
		return nil, fromStore(err)
	}
	return d, nil
}

// List returns the documents in the actor's scope, newest upload first.
func (s *DocumentService) List(actor *models.User, projectID *uint, docType string) ([]models.Document, error) {
	filter, err := s.authz.DocumentScope(actor)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = projectID
	if docType != "" {
		if !models.ValidDocumentType(docType) {
			return nil, Validationf("unknown document type %q", docType)
		}
		filter.Type = docType
	}
	out, err := s.store.ListDocuments(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one document if the actor may see it.
func (s *DocumentService) Get(actor *models.User, id uint) (*models.Document, error) {
	d, err := s.store.GetDocument(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityDocument, d); err != nil {
		return nil, err
	}
	return d, nil
}
