package services

import (
	"fmt"
	"log"
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// WorkflowService enforces the legal status transitions for proposals,
// projects and milestones.
//
//	Proposal:  pending -> approved | rejected          (terminal)
//	Project:   active <-> on_hold, active -> completed (terminal)
//	Milestone: pending -> completed, pending -> overdue (derived),
//	           overdue -> completed
type WorkflowService struct {
	store    store.Store
	authz    *Authorizer
	notifier *NotificationService
	now      func() time.Time
}

func NewWorkflowService(st store.Store, authz *Authorizer, notifier *NotificationService) *WorkflowService {
	return &WorkflowService{
		store:    st,
		authz:    authz,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests use it to move "today" around.
func (s *WorkflowService) SetClock(now func() time.Time) {
	s.now = now
}

/* ==========================
   Proposals
   ========================== */

// ApproveProposal moves a pending proposal to approved, assigns the acting
// supervisor when none is set, and notifies the student. An approved proposal
// unlocks project creation referencing it.
func (s *WorkflowService) ApproveProposal(actor *models.User, proposalID uint) (*models.ProjectProposal, error) {
	proposal, err := s.getProposalForTransition(actor, proposalID)
	if err != nil {
		return nil, err
	}

	proposal.Status = models.ProposalStatusApproved
	if proposal.SupervisorID == nil && actor.IsSupervisor() {
		proposal.SupervisorID = &actor.UserID
	}
	if err := s.store.UpdateProposal(proposal); err != nil {
		return nil, fromStore(err)
	}

	s.notifyStudent(proposal.StudentID,
		fmt.Sprintf("Your proposal %q has been approved.", proposal.Title),
		models.NotificationTypeSuccess)
	return proposal, nil
}

// RejectProposal moves a pending proposal to rejected. Rejection carries
// feedback so the student knows what to fix.
func (s *WorkflowService) RejectProposal(actor *models.User, proposalID uint, feedback string) (*models.ProjectProposal, error) {
	if feedback == "" {
		return nil, Validationf("rejection feedback is required")
	}
	proposal, err := s.getProposalForTransition(actor, proposalID)
	if err != nil {
		return nil, err
	}

	proposal.Status = models.ProposalStatusRejected
	proposal.Feedback = feedback
	if err := s.store.UpdateProposal(proposal); err != nil {
		return nil, fromStore(err)
	}

	s.notifyStudent(proposal.StudentID,
		fmt.Sprintf("Your proposal %q has been rejected: %s", proposal.Title, feedback),
		models.NotificationTypeWarning)
	return proposal, nil
}

func (s *WorkflowService) getProposalForTransition(actor *models.User, proposalID uint) (*models.ProjectProposal, error) {
	proposal, err := s.store.GetProposal(proposalID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityProposal, proposal); err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, ErrInvalidTransition
	}
	return proposal, nil
}

/* ==========================
   Projects
   ========================== */

var projectTransitions = map[string][]string{
	models.ProjectStatusActive: {models.ProjectStatusCompleted, models.ProjectStatusOnHold},
	models.ProjectStatusOnHold: {models.ProjectStatusActive},
	// completed is terminal
}

// TransitionProject changes a project's status along a legal edge.
func (s *WorkflowService) TransitionProject(actor *models.User, projectID uint, newStatus string) (*models.Project, error) {
	if !models.ValidProjectStatus(newStatus) {
		return nil, Validationf("unknown project status %q", newStatus)
	}
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityProject, project); err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range projectTransitions[project.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	project.Status = newStatus
	if newStatus == models.ProjectStatusCompleted && project.EndDate == nil {
		end := s.now()
		project.EndDate = &end
	}
	if err := s.store.UpdateProject(project); err != nil {
		return nil, fromStore(err)
	}

	for _, studentID := range project.StudentIDs() {
		s.notifyStudent(studentID,
			fmt.Sprintf("Project %q is now %s.", project.Title, newStatus),
			models.NotificationTypeInfo)
	}
	return project, nil
}

/* ==========================
   Milestones
   ========================== */

// DeriveMilestoneStatus reports the effective status of a milestone at the
// given time: a pending milestone past its due date reads as overdue. The
// function is pure and idempotent, and never demotes a completed milestone.
func DeriveMilestoneStatus(m *models.Milestone, now time.Time) string {
	if m.Status == models.MilestoneStatusPending && dateOnly(m.DueDate).Before(dateOnly(now)) {
		return models.MilestoneStatusOverdue
	}
	return m.Status
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CompleteMilestone marks a pending or overdue milestone completed and stamps
// the completion date. Late completion (overdue -> completed) is allowed.
func (s *WorkflowService) CompleteMilestone(actor *models.User, milestoneID uint) (*models.Milestone, error) {
	m, err := s.store.GetMilestone(milestoneID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityMilestone, m); err != nil {
		return nil, err
	}
	if m.Status == models.MilestoneStatusCompleted {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	m.Status = models.MilestoneStatusCompleted
	m.CompletionDate = &now
	if err := s.store.UpdateMilestone(m); err != nil {
		return nil, fromStore(err)
	}
	return m, nil
}

// SweepOverdueMilestones persists the derived overdue status for every
// pending milestone past its due date. The sweep is idempotent: it only moves
// pending rows and never touches completion dates. Lazy read-time derivation
// (DeriveMilestoneStatus) makes the sweep optional; it exists so stored
// status counts match what readers see.
func (s *WorkflowService) SweepOverdueMilestones() (int, error) {
	pending, err := s.store.ListMilestones(store.MilestoneFilter{Status: models.MilestoneStatusPending})
	if err != nil {
		return 0, fromStore(err)
	}

	now := s.now()
	swept := 0
	for i := range pending {
		m := pending[i]
		if DeriveMilestoneStatus(&m, now) != models.MilestoneStatusOverdue {
			continue
		}
		m.Status = models.MilestoneStatusOverdue
		if err := s.store.UpdateMilestone(&m); err != nil {
			log.Printf("overdue sweep: milestone %d: %v", m.MilestoneID, err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *WorkflowService) notifyStudent(studentID uint, message, notifType string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.NotifySystem(studentID, message, notifType, nil); err != nil {
		log.Printf("workflow notification failed: %v", err)
	}
}
