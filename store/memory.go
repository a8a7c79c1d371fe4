package store

import (
	"sort"
	"sync"

	"fyp-management-api/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the service tests
// and the dev fallback when no database is configured. All uniqueness
// invariants are enforced under the single lock, so concurrent
// check-then-insert races resolve to exactly one winner just like the SQL
// implementation.
type MemoryStore struct {
	mu sync.Mutex

	nextID uint

	users         map[uint]models.User
	proposals     map[uint]models.ProjectProposal
	projects      map[uint]models.Project
	projStudents  map[uint][]uint
	milestones    map[uint]models.Milestone
	documents     map[uint]models.Document
	submissions   map[uint]models.Submission
	threads       map[uint]models.FeedbackThread
	messages      map[uint]models.FeedbackMessage
	rubrics       map[uint]models.EvaluationRubric
	evaluations   map[uint]models.Evaluation
	notifications map[uint]models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]models.User),
		proposals:     make(map[uint]models.ProjectProposal),
		projects:      make(map[uint]models.Project),
		projStudents:  make(map[uint][]uint),
		milestones:    make(map[uint]models.Milestone),
		documents:     make(map[uint]models.Document),
		submissions:   make(map[uint]models.Submission),
		threads:       make(map[uint]models.FeedbackThread),
		messages:      make(map[uint]models.FeedbackMessage),
		rubrics:       make(map[uint]models.EvaluationRubric),
		evaluations:   make(map[uint]models.Evaluation),
		notifications: make(map[uint]models.Notification),
	}
}

func (s *MemoryStore) nextKey() uint {
	s.nextID++
	return s.nextID
}

/* ==========================
   Users
   ========================== */

func (s *MemoryStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}
	u.UserID = s.nextKey()
	s.users[u.UserID] = *u
	return nil
}

func (s *MemoryStore) GetUser(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.UserID]; !ok {
		return ErrNotFound
	}
	s.users[u.UserID] = *u
	return nil
}

func (s *MemoryStore) ListUsers(f UserFilter) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

/* ==========================
   Proposals
   ========================== */

func (s *MemoryStore) CreateProposal(p *models.ProjectProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ProposalID = s.nextKey()
	s.proposals[p.ProposalID] = *p
	return nil
}

func (s *MemoryStore) GetProposal(id uint) (*models.ProjectProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProposal(p *models.ProjectProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[p.ProposalID]; !ok {
		return ErrNotFound
	}
	s.proposals[p.ProposalID] = *p
	return nil
}

func (s *MemoryStore) DeleteProposal(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return ErrNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *MemoryStore) ListProposals(f ProposalFilter) ([]models.ProjectProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProjectProposal, 0)
	if f.None {
		return out, nil
	}
	for _, p := range s.proposals {
		if f.StudentID != nil && p.StudentID != *f.StudentID {
			continue
		}
		if f.SupervisorID != nil && (p.SupervisorID == nil || *p.SupervisorID != *f.SupervisorID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

/* ==========================
   Projects
   ========================== */

func (s *MemoryStore) CreateProject(p *models.Project, studentIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.ProposalID == p.ProposalID {
			return ErrConflict
		}
	}
	p.ProjectID = s.nextKey()
	s.projects[p.ProjectID] = *p
	s.projStudents[p.ProjectID] = append([]uint(nil), studentIDs...)
	p.Students = s.studentsLocked(p.ProjectID)
	return nil
}

// studentsLocked resolves the enrolled users for a project. Caller holds mu.
func (s *MemoryStore) studentsLocked(projectID uint) []models.User {
	ids := s.projStudents[projectID]
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

// projectLocked returns a copy with students resolved. Caller holds mu.
func (s *MemoryStore) projectLocked(id uint) (models.Project, bool) {
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, false
	}
	p.Students = s.studentsLocked(id)
	return p, true
}

func (s *MemoryStore) GetProject(id uint) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projectLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProject(p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ProjectID]; !ok {
		return ErrNotFound
	}
	stored := *p
	stored.Students = nil
	s.projects[p.ProjectID] = stored
	return nil
}

func (s *MemoryStore) SetProjectStudents(projectID uint, studentIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return ErrNotFound
	}
	s.projStudents[projectID] = append([]uint(nil), studentIDs...)
	return nil
}

func (s *MemoryStore) DeleteProjectCascade(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	delete(s.projStudents, id)
	for mid, m := range s.milestones {
		if m.ProjectID == id {
			delete(s.milestones, mid)
		}
	}
	for did, d := range s.documents {
		if d.ProjectID == id {
			delete(s.documents, did)
		}
	}
	for sid, sub := range s.submissions {
		if sub.ProjectID != id {
			continue
		}
		delete(s.submissions, sid)
		for tid, th := range s.threads {
			if th.SubmissionID != sid {
				continue
			}
			delete(s.threads, tid)
			for mid, msg := range s.messages {
				if msg.ThreadID == tid {
					delete(s.messages, mid)
				}
			}
		}
	}
	for eid, e := range s.evaluations {
		if e.ProjectID == id {
			delete(s.evaluations, eid)
		}
	}
	return nil
}

func (s *MemoryStore) ListProjects(f ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Project, 0)
	if f.None {
		return out, nil
	}
	for id := range s.projects {
		p, _ := s.projectLocked(id)
		if f.MemberID != nil && !p.HasStudent(*f.MemberID) {
			continue
		}
		if f.SupervisorID != nil && (p.SupervisorID == nil || *p.SupervisorID != *f.SupervisorID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

// projectMatchesLocked applies the shared member/supervisor scope to a parent
// project id. Caller holds mu.
func (s *MemoryStore) projectMatchesLocked(projectID uint, memberID, supervisorID *uint) bool {
	p, ok := s.projectLocked(projectID)
	if !ok {
		return false
	}
	if memberID != nil && !p.HasStudent(*memberID) {
		return false
	}
	if supervisorID != nil && (p.SupervisorID == nil || *p.SupervisorID != *supervisorID) {
		return false
	}
	return true
}

/* ==========================
   Milestones
   ========================== */

func (s *MemoryStore) CreateMilestone(m *models.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.MilestoneID = s.nextKey()
	s.milestones[m.MilestoneID] = *m
	return nil
}

func (s *MemoryStore) GetMilestone(id uint) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) UpdateMilestone(m *models.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milestones[m.MilestoneID]; !ok {
		return ErrNotFound
	}
	s.milestones[m.MilestoneID] = *m
	return nil
}

func (s *MemoryStore) DeleteMilestone(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milestones[id]; !ok {
		return ErrNotFound
	}
	delete(s.milestones, id)
	return nil
}

func (s *MemoryStore) ListMilestones(f MilestoneFilter) ([]models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Milestone, 0)
	if f.None {
		return out, nil
	}
	for _, m := range s.milestones {
		if f.ProjectID != nil && m.ProjectID != *f.ProjectID {
			continue
		}
		if !s.projectMatchesLocked(m.ProjectID, f.MemberID, f.SupervisorID) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

/* ==========================
   Documents
   ========================== */

func (s *MemoryStore) CreateDocument(d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Version == 0 {
		max := 0
		for _, existing := range s.documents {
			if existing.ProjectID == d.ProjectID && existing.Name == d.Name && existing.Version > max {
				max = existing.Version
			}
		}
		d.Version = max + 1
	} else {
		for _, existing := range s.documents {
			if existing.ProjectID == d.ProjectID && existing.Name == d.Name && existing.Version == d.Version {
				return ErrConflict
			}
		}
	}
	d.DocumentID = s.nextKey()
	s.documents[d.DocumentID] = *d
	return nil
}

func (s *MemoryStore) GetDocument(id uint) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) ListDocuments(f DocumentFilter) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Document, 0)
	if f.None {
		return out, nil
	}
	for _, d := range s.documents {
		if f.ProjectID != nil && d.ProjectID != *f.ProjectID {
			continue
		}
		if !s.projectMatchesLocked(d.ProjectID, f.MemberID, f.SupervisorID) {
			continue
		}
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

/* ==========================
   Submissions & feedback
   ========================== */

func (s *MemoryStore) CreateSubmission(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.SubmissionID = s.nextKey()
	s.submissions[sub.SubmissionID] = *sub
	return nil
}

func (s *MemoryStore) GetSubmission(id uint) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *MemoryStore) ListSubmissions(f SubmissionFilter) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Submission, 0)
	if f.None {
		return out, nil
	}
	for _, sub := range s.submissions {
		if f.ProjectID != nil && sub.ProjectID != *f.ProjectID {
			continue
		}
		if f.StudentID != nil && sub.StudentID != *f.StudentID {
			continue
		}
		if !s.projectMatchesLocked(sub.ProjectID, nil, f.SupervisorID) {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) GetOrCreateThread(submissionID uint) (*models.FeedbackThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[submissionID]; !ok {
		return nil, ErrNotFound
	}
	for _, th := range s.threads {
		if th.SubmissionID == submissionID {
			out := th
			return &out, nil
		}
	}
	th := models.FeedbackThread{ThreadID: s.nextKey(), SubmissionID: submissionID}
	s.threads[th.ThreadID] = th
	return &th, nil
}

func (s *MemoryStore) GetThread(id uint) (*models.FeedbackThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &th, nil
}

func (s *MemoryStore) CreateFeedbackMessage(m *models.FeedbackMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[m.ThreadID]; !ok {
		return ErrNotFound
	}
	m.MessageID = s.nextKey()
	s.messages[m.MessageID] = *m
	return nil
}

// messageMatchesLocked resolves a message's submission chain against the
// student/supervisor scope. Caller holds mu.
func (s *MemoryStore) messageMatchesLocked(m models.FeedbackMessage, f FeedbackMessageFilter) bool {
	th, ok := s.threads[m.ThreadID]
	if !ok {
		return false
	}
	sub, ok := s.submissions[th.SubmissionID]
	if !ok {
		return false
	}
	if f.StudentID != nil && sub.StudentID != *f.StudentID {
		return false
	}
	if f.SupervisorID != nil && !s.projectMatchesLocked(sub.ProjectID, nil, f.SupervisorID) {
		return false
	}
	return true
}

func (s *MemoryStore) ListFeedbackMessages(f FeedbackMessageFilter) ([]models.FeedbackMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FeedbackMessage, 0)
	if f.None {
		return out, nil
	}
	for _, m := range s.messages {
		if f.ThreadID != nil && m.ThreadID != *f.ThreadID {
			continue
		}
		if !s.messageMatchesLocked(m, f) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MessageID < out[j].MessageID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

/* ==========================
   Rubrics & evaluations
   ========================== */

func (s *MemoryStore) CreateRubric(r *models.EvaluationRubric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.RubricID = s.nextKey()
	s.rubrics[r.RubricID] = *r
	return nil
}

func (s *MemoryStore) GetRubric(id uint) (*models.EvaluationRubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rubrics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListRubrics() ([]models.EvaluationRubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EvaluationRubric, 0, len(s.rubrics))
	for _, r := range s.rubrics {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RubricID < out[j].RubricID })
	return out, nil
}

func (s *MemoryStore) CreateEvaluation(e *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.evaluations {
		if existing.ProjectID == e.ProjectID && existing.EvaluatorID == e.EvaluatorID {
			return ErrConflict
		}
	}
	e.EvaluationID = s.nextKey()
	s.evaluations[e.EvaluationID] = *e
	return nil
}

func (s *MemoryStore) GetEvaluation(id uint) (*models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evaluations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListEvaluations(f EvaluationFilter) ([]models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Evaluation, 0)
	if f.None {
		return out, nil
	}
	for _, e := range s.evaluations {
		if f.ProjectID != nil && e.ProjectID != *f.ProjectID {
			continue
		}
		if f.EvaluatorID != nil && e.EvaluatorID != *f.EvaluatorID {
			continue
		}
		if f.MemberID != nil && !s.projectMatchesLocked(e.ProjectID, f.MemberID, nil) {
			continue
		}
		if f.SupervisorOrEvaluatorID != nil {
			id := *f.SupervisorOrEvaluatorID
			if e.EvaluatorID != id && !s.projectMatchesLocked(e.ProjectID, nil, &id) {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EvaluationID < out[j].EvaluationID })
	return out, nil
}

/* ==========================
   Notifications
   ========================== */

func (s *MemoryStore) CreateNotification(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.NotificationID = s.nextKey()
	s.notifications[n.NotificationID] = *n
	return nil
}

func (s *MemoryStore) GetNotification(id uint) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryStore) UpdateNotificationRead(id uint, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = read
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkNotificationEmailSent(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	if n.EmailSent {
		return nil
	}
	n.EmailSent = true
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) ListNotifications(f NotificationFilter) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0)
	if f.None {
		return out, nil
	}
	for _, n := range s.notifications {
		if f.RecipientID != nil && n.RecipientID != *f.RecipientID {
			continue
		}
		if f.Unread != nil && n.IsRead == *f.Unread {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].NotificationID > out[j].NotificationID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

/* ==========================
   Aggregates
   ========================== */

func (s *MemoryStore) CountUsersByRole() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, u := range s.users {
		out[u.Role]++
	}
	return out, nil
}

func (s *MemoryStore) CountProposalsByStatus() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, p := range s.proposals {
		out[p.Status]++
	}
	return out, nil
}

func (s *MemoryStore) CountProjectsByStatus() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, p := range s.projects {
		out[p.Status]++
	}
	return out, nil
}

func (s *MemoryStore) CountMilestonesByStatus() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, m := range s.milestones {
		out[m.Status]++
	}
	return out, nil
}

func (s *MemoryStore) CountDocumentsByType() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64)
	for _, d := range s.documents {
		out[d.Type]++
	}
	return out, nil
}

func (s *MemoryStore) CountSubmissions() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.submissions)), nil
}

func (s *MemoryStore) AverageEvaluationScore() (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.evaluations) == 0 {
		return nil, nil
	}
	var total float64
	for _, e := range s.evaluations {
		total += e.TotalScore
	}
	avg := total / float64(len(s.evaluations))
	return &avg, nil
}
