package services

import (
	"fmt"
	"log"
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// ProposalInput carries the student-supplied proposal fields.
type ProposalInput struct {
	Title        string
	Description  string
	DocumentPath string
}

// ProposalUpdate carries the staff-editable proposal fields. Status never
// changes here; approval and rejection go through the workflow service.
type ProposalUpdate struct {
	Title        *string
	Description  *string
	SupervisorID *uint
	Feedback     *string
}

type ProposalService struct {
	store    store.Store
	authz    *Authorizer
	notifier *NotificationService
	now      func() time.Time
}

func NewProposalService(st store.Store, authz *Authorizer, notifier *NotificationService) *ProposalService {
	return &ProposalService{store: st, authz: authz, notifier: notifier, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *ProposalService) SetClock(now func() time.Time) {
	s.now = now
}

// Create submits a new proposal for the acting student. The owner is pinned
// to the actor and the status starts pending.
func (s *ProposalService) Create(actor *models.User, input ProposalInput) (*models.ProjectProposal, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityProposal, nil); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, Validationf("proposal title is required")
	}

	p := &models.ProjectProposal{
		Title:        input.Title,
		Description:  input.Description,
		DocumentPath: input.DocumentPath,
		Status:       models.ProposalStatusPending,
		StudentID:    actor.UserID,
		SubmittedAt:  s.now(),
	}
	if err := s.store.CreateProposal(p); err != nil {
		return nil, fromStore(err)
	}
	return p, nil
}

// List returns the proposals in the actor's scope, newest first.
func (s *ProposalService) List(actor *models.User, status string) ([]models.ProjectProposal, error) {
	filter, err := s.authz.ProposalScope(actor)
	if err != nil {
		return nil, err
	}
	if status != "" {
		if !models.ValidProposalStatus(status) {
			return nil, Validationf("unknown proposal status %q", status)
		}
		filter.Status = status
	}
	out, err := s.store.ListProposals(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one proposal if the actor may see it.
func (s *ProposalService) Get(actor *models.User, id uint) (*models.ProjectProposal, error) {
	p, err := s.store.GetProposal(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityProposal, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits staff-owned proposal fields. Assigning a supervisor notifies
// that supervisor.
func (s *ProposalService) Update(actor *models.User, id uint, update ProposalUpdate) (*models.ProjectProposal, error) {
	p, err := s.store.GetProposal(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityProposal, p); err != nil {
		return nil, err
	}

	assignedSupervisor := false
	if update.SupervisorID != nil {
		supervisor, err := s.store.GetUser(*update.SupervisorID)
		if err != nil {
			return nil, Validationf("supervisor %d does not exist", *update.SupervisorID)
		}
		if !supervisor.IsSupervisor() {
			return nil, Validationf("user %d is not a supervisor", *update.SupervisorID)
		}
		assignedSupervisor = p.SupervisorID == nil || *p.SupervisorID != *update.SupervisorID
		p.SupervisorID = update.SupervisorID
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Feedback != nil {
		p.Feedback = *update.Feedback
	}

	if err := s.store.UpdateProposal(p); err != nil {
		return nil, fromStore(err)
	}

	if assignedSupervisor && s.notifier != nil {
		msg := fmt.Sprintf("You have been assigned to review the proposal %q.", p.Title)
		if _, err := s.notifier.NotifySystem(*p.SupervisorID, msg, models.NotificationTypeInfo, nil); err != nil {
			log.Printf("supervisor assignment notification failed: %v", err)
		}
	}
	return p, nil
}

// Delete removes a proposal. An approved proposal may already anchor a
// project, so it stays.
func (s *ProposalService) Delete(actor *models.User, id uint) error {
	p, err := s.store.GetProposal(id)
	if err != nil {
		return fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionDelete, EntityProposal, p); err != nil {
		return err
	}
	if p.Status == models.ProposalStatusApproved {
		return ErrConflict
	}
	return fromStore(s.store.DeleteProposal(id))
}
