package store

import (
	"errors"

	"fyp-management-api/models"
)

// Storage-level sentinel errors. Services translate these into the API error
// taxonomy; callers must treat a record outside their scope exactly like a
// missing one.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("uniqueness conflict")
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role string
}

// ProposalFilter narrows proposal listings. A nil id field means "no
// constraint"; None matches nothing and is produced for actors whose scope is
// empty.
type ProposalFilter struct {
	StudentID    *uint
	SupervisorID *uint
	Status       string
	None         bool
}

// ProjectFilter narrows project listings. MemberID matches enrolled students.
type ProjectFilter struct {
	MemberID     *uint
	SupervisorID *uint
	Status       string
	None         bool
}

// MilestoneFilter narrows milestone listings. MemberID and SupervisorID are
// resolved through the parent project.
type MilestoneFilter struct {
	ProjectID    *uint
	MemberID     *uint
	SupervisorID *uint
	Status       string
	None         bool
}

// DocumentFilter narrows document listings. MemberID and SupervisorID are
// resolved through the parent project.
type DocumentFilter struct {
	ProjectID    *uint
	MemberID     *uint
	SupervisorID *uint
	Type         string
	None         bool
}

// SubmissionFilter narrows submission listings. SupervisorID is resolved
// through the parent project.
type SubmissionFilter struct {
	ProjectID    *uint
	StudentID    *uint
	SupervisorID *uint
	None         bool
}

// FeedbackMessageFilter narrows feedback message listings. StudentID matches
// the owning submission's student; SupervisorID matches the submission's
// project supervisor.
type FeedbackMessageFilter struct {
	ThreadID     *uint
	StudentID    *uint
	SupervisorID *uint
	None         bool
}

// EvaluationFilter narrows evaluation listings. SupervisorOrEvaluatorID
// matches rows where the actor supervises the project or authored the
// evaluation (union, per the supervisor scope).
type EvaluationFilter struct {
	ProjectID               *uint
	MemberID                *uint
	EvaluatorID             *uint
	SupervisorOrEvaluatorID *uint
	None                    bool
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	RecipientID *uint
	Unread      *bool
	None        bool
}

// Store is the entity repository consumed by the service layer. Create
// methods that guard a uniqueness invariant (project per proposal, evaluation
// per project+evaluator, document version per project+name) perform the
// check-then-insert atomically and report ErrConflict on violation.
type Store interface {
	// Users
	CreateUser(u *models.User) error
	GetUser(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(u *models.User) error
	ListUsers(f UserFilter) ([]models.User, error)

	// Proposals
	CreateProposal(p *models.ProjectProposal) error
	GetProposal(id uint) (*models.ProjectProposal, error)
	UpdateProposal(p *models.ProjectProposal) error
	DeleteProposal(id uint) error
	ListProposals(f ProposalFilter) ([]models.ProjectProposal, error)

	// Projects. CreateProject fails with ErrConflict when the proposal is
	// already linked to another project. DeleteProjectCascade is the single
	// named cascade operation: it removes the project together with its
	// milestones, documents, submissions (threads and messages included) and
	// evaluations.
	CreateProject(p *models.Project, studentIDs []uint) error
	GetProject(id uint) (*models.Project, error)
	UpdateProject(p *models.Project) error
	SetProjectStudents(projectID uint, studentIDs []uint) error
	DeleteProjectCascade(id uint) error
	ListProjects(f ProjectFilter) ([]models.Project, error)

	// Milestones
	CreateMilestone(m *models.Milestone) error
	GetMilestone(id uint) (*models.Milestone, error)
	UpdateMilestone(m *models.Milestone) error
	DeleteMilestone(id uint) error
	ListMilestones(f MilestoneFilter) ([]models.Milestone, error)

	// Documents. CreateDocument assigns the next version for
	// (project, name) under a per-key serialization point when d.Version is
	// zero; a caller-supplied version that already exists reports ErrConflict.
	CreateDocument(d *models.Document) error
	GetDocument(id uint) (*models.Document, error)
	ListDocuments(f DocumentFilter) ([]models.Document, error)

	// Submissions and feedback
	CreateSubmission(s *models.Submission) error
	GetSubmission(id uint) (*models.Submission, error)
	ListSubmissions(f SubmissionFilter) ([]models.Submission, error)
	GetOrCreateThread(submissionID uint) (*models.FeedbackThread, error)
	GetThread(id uint) (*models.FeedbackThread, error)
	CreateFeedbackMessage(m *models.FeedbackMessage) error
	ListFeedbackMessages(f FeedbackMessageFilter) ([]models.FeedbackMessage, error)

	// Rubrics and evaluations. CreateEvaluation reports ErrConflict for a
	// duplicate (project, evaluator) pair.
	CreateRubric(r *models.EvaluationRubric) error
	GetRubric(id uint) (*models.EvaluationRubric, error)
	ListRubrics() ([]models.EvaluationRubric, error)
	CreateEvaluation(e *models.Evaluation) error
	GetEvaluation(id uint) (*models.Evaluation, error)
	ListEvaluations(f EvaluationFilter) ([]models.Evaluation, error)

	// Notifications. MarkNotificationEmailSent sets the flag exactly once;
	// further calls are no-ops.
	CreateNotification(n *models.Notification) error
	GetNotification(id uint) (*models.Notification, error)
	UpdateNotificationRead(id uint, read bool) error
	MarkNotificationEmailSent(id uint) error
	ListNotifications(f NotificationFilter) ([]models.Notification, error)

	// Aggregate reads for analytics. Point-in-time snapshots of current
	// state, never cached.
	CountUsersByRole() (map[string]int64, error)
	CountProposalsByStatus() (map[string]int64, error)
	CountProjectsByStatus() (map[string]int64, error)
	CountMilestonesByStatus() (map[string]int64, error)
	CountDocumentsByType() (map[string]int64, error)
	CountSubmissions() (int64, error)
	AverageEvaluationScore() (*float64, error)
}
