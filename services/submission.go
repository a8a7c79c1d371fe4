package services

import (
	"fmt"
	"log"
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// SubmissionInput carries the fields for a new submission.
type SubmissionInput struct {
	ProjectID uint
	Title     string
	FilePath  string
}

// SubmissionService handles submissions and their feedback threads. A thread
// is created alongside each submission; GetThread also creates lazily for
// rows that predate that behavior.
type SubmissionService struct {
	store    store.Store
	authz    *Authorizer
	notifier *NotificationService
	now      func() time.Time
}

func NewSubmissionService(st store.Store, authz *Authorizer, notifier *NotificationService) *SubmissionService {
	return &SubmissionService{store: st, authz: authz, notifier: notifier, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *SubmissionService) SetClock(now func() time.Time) {
	s.now = now
}

// Create submits work for the acting student, who must be an enrolled member
// of the project.
func (s *SubmissionService) Create(actor *models.User, input SubmissionInput) (*models.Submission, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntitySubmission, nil); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, Validationf("submission title is required")
	}

	project, err := s.store.GetProject(input.ProjectID)
	if err != nil {
		return nil, fromStore(err)
	}
	if !project.HasStudent(actor.UserID) {
		// a non-member cannot see the project either
		return nil, ErrNotFound
	}

	sub := &models.Submission{
		Title:       input.Title,
		FilePath:    input.FilePath,
		StudentID:   actor.UserID,
		ProjectID:   input.ProjectID,
		SubmittedAt: s.now(),
	}
	if err := s.store.CreateSubmission(sub); err != nil {
		return nil, fromStore(err)
	}
	if _, err := s.store.GetOrCreateThread(sub.SubmissionID); err != nil {
		log.Printf("submission %d: feedback thread creation failed: %v", sub.SubmissionID, err)
	}
	return sub, nil
}

// List returns the submissions in the actor's scope, newest first.
func (s *SubmissionService) List(actor *models.User, projectID *uint) ([]models.Submission, error) {
	filter, err := s.authz.SubmissionScope(actor)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = projectID
	out, err := s.store.ListSubmissions(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one submission if the actor may see it.
func (s *SubmissionService) Get(actor *models.User, id uint) (*models.Submission, error) {
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntitySubmission, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetThread returns the feedback thread of a visible submission, creating it
// lazily when missing.
func (s *SubmissionService) GetThread(actor *models.User, submissionID uint) (*models.FeedbackThread, error) {
	if _, err := s.Get(actor, submissionID); err != nil {
		return nil, err
	}
	th, err := s.store.GetOrCreateThread(submissionID)
	if err != nil {
		return nil, fromStore(err)
	}
	return th, nil
}

// AddFeedbackMessage appends a message to a submission's thread. Only the two
// parties of the thread may write: the submitting student and the project
// supervisor. The counterpart is notified.
func (s *SubmissionService) AddFeedbackMessage(actor *models.User, submissionID uint, message string) (*models.FeedbackMessage, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityFeedbackMessage, nil); err != nil {
		return nil, err
	}
	if message == "" {
		return nil, Validationf("message text is required")
	}

	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return nil, fromStore(err)
	}
	project, err := s.store.GetProject(sub.ProjectID)
	if err != nil {
		return nil, fromStore(err)
	}

	isOwner := actor.IsStudent() && sub.StudentID == actor.UserID
	isProjectSupervisor := actor.IsSupervisor() && project.SupervisorID != nil && *project.SupervisorID == actor.UserID
	if !isOwner && !isProjectSupervisor {
		return nil, ErrForbidden
	}

	th, err := s.store.GetOrCreateThread(submissionID)
	if err != nil {
		return nil, fromStore(err)
	}
	m := &models.FeedbackMessage{
		ThreadID:  th.ThreadID,
		SenderID:  actor.UserID,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateFeedbackMessage(m); err != nil {
		return nil, fromStore(err)
	}

	s.notifyCounterpart(actor, sub, project)
	return m, nil
}

// ListFeedbackMessages returns a visible submission's thread messages, oldest
// first.
func (s *SubmissionService) ListFeedbackMessages(actor *models.User, submissionID uint) ([]models.FeedbackMessage, error) {
	if _, err := s.Get(actor, submissionID); err != nil {
		return nil, err
	}
	th, err := s.store.GetOrCreateThread(submissionID)
	if err != nil {
		return nil, fromStore(err)
	}
	out, err := s.store.ListFeedbackMessages(store.FeedbackMessageFilter{ThreadID: &th.ThreadID})
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

func (s *SubmissionService) notifyCounterpart(actor *models.User, sub *models.Submission, project *models.Project) {
	if s.notifier == nil {
		return
	}
	var recipientID uint
	if actor.UserID == sub.StudentID {
		if project.SupervisorID == nil {
			return
		}
		recipientID = *project.SupervisorID
	} else {
		recipientID = sub.StudentID
	}
	msg := fmt.Sprintf("New feedback on submission %q.", sub.Title)
	if _, err := s.notifier.NotifySystem(recipientID, msg, models.NotificationTypeInfo, nil); err != nil {
		log.Printf("feedback notification failed: %v", err)
	}
}
