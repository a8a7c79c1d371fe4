package services

import (
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// ProjectInput describes a project to be formed from an approved proposal.
// Title, description and supervisor default to the proposal's values when
// omitted.
type ProjectInput struct {
	ProposalID   uint
	Title        string
	Description  string
	SupervisorID *uint
	StudentIDs   []uint
	StartDate    *time.Time
	EndDate      *time.Time
}

// ProjectUpdate carries the staff-editable project fields. Status changes go
// through the workflow service.
type ProjectUpdate struct {
	Title        *string
	Description  *string
	SupervisorID *uint
	StudentIDs   []uint
	StartDate    *time.Time
	EndDate      *time.Time
}

type ProjectService struct {
	store store.Store
	authz *Authorizer
	now   func() time.Time
}

func NewProjectService(st store.Store, authz *Authorizer) *ProjectService {
	return &ProjectService{store: st, authz: authz, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *ProjectService) SetClock(now func() time.Time) {
	s.now = now
}

// Create forms a project from an approved proposal. The 1:1 link is enforced
// by the store: a second creation against the same proposal fails with
// ErrConflict no matter how the attempts interleave.
func (s *ProjectService) Create(actor *models.User, input ProjectInput) (*models.Project, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityProject, nil); err != nil {
		return nil, err
	}

	proposal, err := s.store.GetProposal(input.ProposalID)
	if err != nil {
		return nil, fromStore(err)
	}
	if proposal.Status != models.ProposalStatusApproved {
		return nil, Validationf("proposal %d is not approved", input.ProposalID)
	}

	studentIDs := input.StudentIDs
	if len(studentIDs) == 0 {
		studentIDs = []uint{proposal.StudentID}
	}
	if err := s.validateStudents(studentIDs); err != nil {
		return nil, err
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	p := &models.Project{
		ProposalID:   input.ProposalID,
		Title:        input.Title,
		Description:  input.Description,
		SupervisorID: input.SupervisorID,
		Status:       models.ProjectStatusActive,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreatedAt:    s.now(),
	}
	if p.Title == "" {
		p.Title = proposal.Title
	}
	if p.Description == "" {
		p.Description = proposal.Description
	}
	if p.SupervisorID == nil {
		p.SupervisorID = proposal.SupervisorID
	}
	if p.StartDate == nil {
		start := s.now()
		p.StartDate = &start
	}

	if err := s.store.CreateProject(p, studentIDs); err != nil {
		return nil, fromStore(err)
	}
	// re-read through the store: the creator may assign the project to
	// another supervisor and fall outside their own read scope
	created, err := s.store.GetProject(p.ProjectID)
	if err != nil {
		return nil, fromStore(err)
	}
	return created, nil
}

// List returns the projects in the actor's scope.
func (s *ProjectService) List(actor *models.User, status string) ([]models.Project, error) {
	filter, err := s.authz.ProjectScope(actor)
	if err != nil {
		return nil, err
	}
	if status != "" {
		if !models.ValidProjectStatus(status) {
			return nil, Validationf("unknown project status %q", status)
		}
		filter.Status = status
	}
	out, err := s.store.ListProjects(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one project if the actor may see it.
func (s *ProjectService) Get(actor *models.User, id uint) (*models.Project, error) {
	p, err := s.store.GetProject(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityProject, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits project fields. An active project keeps a non-empty student
// set and end_date never precedes start_date.
func (s *ProjectService) Update(actor *models.User, id uint, update ProjectUpdate) (*models.Project, error) {
	p, err := s.store.GetProject(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityProject, p); err != nil {
		return nil, err
	}

	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.SupervisorID != nil {
		supervisor, err := s.store.GetUser(*update.SupervisorID)
		if err != nil {
			return nil, Validationf("supervisor %d does not exist", *update.SupervisorID)
		}
		if !supervisor.IsSupervisor() {
			return nil, Validationf("user %d is not a supervisor", *update.SupervisorID)
		}
		p.SupervisorID = update.SupervisorID
	}
	if update.StartDate != nil {
		p.StartDate = update.StartDate
	}
	if update.EndDate != nil {
		p.EndDate = update.EndDate
	}
	if err := validateDates(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}

	if update.StudentIDs != nil {
		if len(update.StudentIDs) == 0 && p.Status == models.ProjectStatusActive {
			return nil, Validationf("an active project needs at least one student")
		}
		if err := s.validateStudents(update.StudentIDs); err != nil {
			return nil, err
		}
		if err := s.store.SetProjectStudents(id, update.StudentIDs); err != nil {
			return nil, fromStore(err)
		}
	}

	if err := s.store.UpdateProject(p); err != nil {
		return nil, fromStore(err)
	}
	// same as Create: reassignment may move the project out of the
	// actor's read scope, the write itself was already authorized
	updated, err := s.store.GetProject(id)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

// Delete removes the project and cascades over its milestones, documents,
// submissions and evaluations through the store's named cascade operation.
func (s *ProjectService) Delete(actor *models.User, id uint) error {
	p, err := s.store.GetProject(id)
	if err != nil {
		return fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionDelete, EntityProject, p); err != nil {
		return err
	}
	return fromStore(s.store.DeleteProjectCascade(id))
}

func (s *ProjectService) validateStudents(ids []uint) error {
	if len(ids) == 0 {
		return Validationf("a project needs at least one student")
	}
	for _, id := range ids {
		u, err := s.store.GetUser(id)
		if err != nil {
			return Validationf("student %d does not exist", id)
		}
		if !u.IsStudent() {
			return Validationf("user %d is not a student", id)
		}
	}
	return nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return Validationf("end_date must not precede start_date")
	}
	return nil
}
