package services

import (
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// MilestoneInput carries the fields for a new milestone.
type MilestoneInput struct {
	ProjectID   uint
	Title       string
	Description string
	DueDate     time.Time
}

// MilestoneUpdate carries the staff-editable milestone fields. Completion is
// a workflow transition, not an edit.
type MilestoneUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
}

type MilestoneService struct {
	store store.Store
	authz *Authorizer
	now   func() time.Time
}

func NewMilestoneService(st store.Store, authz *Authorizer) *MilestoneService {
	return &MilestoneService{store: st, authz: authz, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *MilestoneService) SetClock(now func() time.Time) {
	s.now = now
}

// Create adds a milestone to a project the actor supervises (or any project
// for admin).
func (s *MilestoneService) Create(actor *models.User, input MilestoneInput) (*models.Milestone, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityMilestone, nil); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, Validationf("milestone title is required")
	}
	if input.DueDate.IsZero() {
		return nil, Validationf("milestone due date is required")
	}

	// the parent must be in the actor's scope; outside actors see NotFound
	project, err := s.store.GetProject(input.ProjectID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityProject, project); err != nil {
		return nil, err
	}

	m := &models.Milestone{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      models.MilestoneStatusPending,
	}
	if err := s.store.CreateMilestone(m); err != nil {
		return nil, fromStore(err)
	}
	return m, nil
}

// List returns milestones in the actor's scope ordered by due date, with the
// overdue status derived at read time.
func (s *MilestoneService) List(actor *models.User, projectID *uint, status string) ([]models.Milestone, error) {
	filter, err := s.authz.MilestoneScope(actor)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = projectID
	out, err := s.store.ListMilestones(filter)
	if err != nil {
		return nil, fromStore(err)
	}

	now := s.now()
	for i := range out {
		out[i].Status = DeriveMilestoneStatus(&out[i], now)
	}
	if status != "" {
		filtered := out[:0]
		for _, m := range out {
			if m.Status == status {
				filtered = append(filtered, m)
			}
		}
		out = filtered
	}
	return out, nil
}

// Get returns one milestone with its derived status.
func (s *MilestoneService) Get(actor *models.User, id uint) (*models.Milestone, error) {
	m, err := s.store.GetMilestone(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityMilestone, m); err != nil {
		return nil, err
	}
	m.Status = DeriveMilestoneStatus(m, s.now())
	return m, nil
}

// Update edits milestone fields.
func (s *MilestoneService) Update(actor *models.User, id uint, update MilestoneUpdate) (*models.Milestone, error) {
	m, err := s.store.GetMilestone(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityMilestone, m); err != nil {
		return nil, err
	}

	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.DueDate != nil {
		m.DueDate = *update.DueDate
	}
	if err := s.store.UpdateMilestone(m); err != nil {
		return nil, fromStore(err)
	}
	m.Status = DeriveMilestoneStatus(m, s.now())
	return m, nil
}

// Delete removes a milestone.
func (s *MilestoneService) Delete(actor *models.User, id uint) error {
	m, err := s.store.GetMilestone(id)
	if err != nil {
		return fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionDelete, EntityMilestone, m); err != nil {
		return err
	}
	return fromStore(s.store.DeleteMilestone(id))
}
