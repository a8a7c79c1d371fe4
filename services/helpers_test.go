package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records outgoing mail and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	store  *store.MemoryStore
	mailer *fakeMailer

	authz         *Authorizer
	users         *UserService
	proposals     *ProposalService
	projects      *ProjectService
	milestones    *MilestoneService
	documents     *DocumentService
	submissions   *SubmissionService
	evaluations   *EvaluationService
	notifications *NotificationService
	workflow      *WorkflowService
	analytics     *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	mailer := &fakeMailer{}
	authz := NewAuthorizer(st)
	notifications := NewNotificationService(st, authz, mailer)

	return &testEnv{
		store:         st,
		mailer:        mailer,
		authz:         authz,
		users:         NewUserService(st),
		proposals:     NewProposalService(st, authz, notifications),
		projects:      NewProjectService(st, authz),
		milestones:    NewMilestoneService(st, authz),
		documents:     NewDocumentService(st, authz),
		submissions:   NewSubmissionService(st, authz, notifications),
		evaluations:   NewEvaluationService(st, authz),
		notifications: notifications,
		workflow:      NewWorkflowService(st, authz, notifications),
		analytics:     NewAnalyticsService(st),
	}
}

var userSeq int

func (e *testEnv) seedUser(t *testing.T, role string) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Email:     fmt.Sprintf("user%d@example.edu", userSeq),
		Password:  "hashed",
		FirstName: "Test",
		LastName:  role,
		Role:      role,
	}
	require.NoError(t, e.store.CreateUser(u))
	return u
}

func (e *testEnv) seedProposal(t *testing.T, student *models.User, status string) *models.ProjectProposal {
	t.Helper()
	p := &models.ProjectProposal{
		Title:       "Proposal by " + student.Email,
		Description: "desc",
		Status:      status,
		StudentID:   student.UserID,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, e.store.CreateProposal(p))
	return p
}

func (e *testEnv) seedProject(t *testing.T, supervisor *models.User, students ...*models.User) *models.Project {
	t.Helper()

	var studentIDs []uint
	for _, s := range students {
		studentIDs = append(studentIDs, s.UserID)
	}

	var owner *models.User
	if len(students) > 0 {
		owner = students[0]
	} else {
		owner = e.seedUser(t, models.RoleStudent)
		studentIDs = append(studentIDs, owner.UserID)
	}
	proposal := e.seedProposal(t, owner, models.ProposalStatusApproved)

	start := time.Now()
	p := &models.Project{
		ProposalID: proposal.ProposalID,
		Title:      proposal.Title,
		Status:     models.ProjectStatusActive,
		StartDate:  &start,
		CreatedAt:  time.Now(),
	}
	if supervisor != nil {
		p.SupervisorID = &supervisor.UserID
	}
	require.NoError(t, e.store.CreateProject(p, studentIDs))
	return p
}

func (e *testEnv) seedMilestone(t *testing.T, project *models.Project, due time.Time, status string) *models.Milestone {
	t.Helper()
	m := &models.Milestone{
		ProjectID: project.ProjectID,
		Title:     "Milestone",
		DueDate:   due,
		Status:    status,
	}
	require.NoError(t, e.store.CreateMilestone(m))
	return m
}

// fixedClock pins a service clock to a single instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func futureDate() time.Time {
	return time.Now().AddDate(0, 0, 14)
}

func pastDate() time.Time {
	return time.Now().AddDate(0, 0, -14)
}
