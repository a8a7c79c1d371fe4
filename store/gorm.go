package store

import (
	"database/sql"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fyp-management-api/models"
)

// GormStore is the MySQL-backed Store. Uniqueness invariants ride on unique
// indexes plus row locks inside transactions, so concurrent check-then-insert
// races surface as ErrConflict for the loser.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the schema for every entity table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.ProjectProposal{},
		&models.Project{},
		&models.Milestone{},
		&models.Document{},
		&models.Submission{},
		&models.FeedbackThread{},
		&models.FeedbackMessage{},
		&models.EvaluationRubric{},
		&models.Evaluation{},
		&models.Notification{},
	)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicateKey(err):
		return ErrConflict
	}
	return err
}

/* ==========================
   Users
   ========================== */

func (s *GormStore) CreateUser(u *models.User) error {
	return translate(s.db.Create(u).Error)
}

func (s *GormStore) GetUser(id uint) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "user_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) UpdateUser(u *models.User) error {
	res := s.db.Model(&models.User{}).Where("user_id = ?", u.UserID).Updates(map[string]interface{}{
		"email":      u.Email,
		"password":   u.Password,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListUsers(f UserFilter) ([]models.User, error) {
	q := s.db.Order("user_id ASC")
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

/* ==========================
   Proposals
   ========================== */

func (s *GormStore) CreateProposal(p *models.ProjectProposal) error {
	return translate(s.db.Create(p).Error)
}

func (s *GormStore) GetProposal(id uint) (*models.ProjectProposal, error) {
	var p models.ProjectProposal
	if err := s.db.First(&p, "proposal_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpdateProposal(p *models.ProjectProposal) error {
	res := s.db.Model(&models.ProjectProposal{}).Where("proposal_id = ?", p.ProposalID).Updates(map[string]interface{}{
		"title":         p.Title,
		"description":   p.Description,
		"document_path": p.DocumentPath,
		"status":        p.Status,
		"supervisor_id": p.SupervisorID,
		"feedback":      p.Feedback,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.ProjectProposal{}).Where("proposal_id = ?", p.ProposalID).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) DeleteProposal(id uint) error {
	res := s.db.Delete(&models.ProjectProposal{}, "proposal_id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListProposals(f ProposalFilter) ([]models.ProjectProposal, error) {
	var proposals []models.ProjectProposal
	if f.None {
		return proposals, nil
	}
	q := s.db.Order("submitted_at DESC")
	if f.StudentID != nil {
		q = q.Where("student_id = ?", *f.StudentID)
	}
	if f.SupervisorID != nil {
		q = q.Where("supervisor_id = ?", *f.SupervisorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if err := q.Find(&proposals).Error; err != nil {
		return nil, translate(err)
	}
	return proposals, nil
}

/* ==========================
   Projects
   ========================== */

func (s *GormStore) CreateProject(p *models.Project, studentIDs []uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Students", "Proposal", "Supervisor").Create(p).Error; err != nil {
			return err
		}
		for _, id := range studentIDs {
			if err := tx.Exec("INSERT INTO project_students (project_id, user_id) VALUES (?, ?)", p.ProjectID, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (s *GormStore) GetProject(id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.Preload("Students").First(&p, "project_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpdateProject(p *models.Project) error {
	res := s.db.Model(&models.Project{}).Where("project_id = ?", p.ProjectID).Updates(map[string]interface{}{
		"title":         p.Title,
		"description":   p.Description,
		"supervisor_id": p.SupervisorID,
		"status":        p.Status,
		"start_date":    p.StartDate,
		"end_date":      p.EndDate,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Project{}).Where("project_id = ?", p.ProjectID).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) SetProjectStudents(projectID uint, studentIDs []uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Exec("DELETE FROM project_students WHERE project_id = ?", projectID).Error; err != nil {
			return err
		}
		for _, id := range studentIDs {
			if err := tx.Exec("INSERT INTO project_students (project_id, user_id) VALUES (?, ?)", projectID, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

// DeleteProjectCascade removes the project together with its child rows. The
// cascade is explicit here rather than delegated to foreign-key ON DELETE so
// the exact blast radius is visible and testable.
func (s *GormStore) DeleteProjectCascade(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Project{}, "project_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Exec("DELETE FROM project_students WHERE project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Milestone{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Document{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE fm FROM feedback_messages fm
			JOIN feedback_threads ft ON ft.thread_id = fm.thread_id
			JOIN submissions sub ON sub.submission_id = ft.submission_id
			WHERE sub.project_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE ft FROM feedback_threads ft
			JOIN submissions sub ON sub.submission_id = ft.submission_id
			WHERE sub.project_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Submission{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Evaluation{}, "project_id = ?", id).Error
	})
	return translate(err)
}

func (s *GormStore) ListProjects(f ProjectFilter) ([]models.Project, error) {
	var projects []models.Project
	if f.None {
		return projects, nil
	}
	q := s.db.Preload("Students").Order("projects.project_id ASC")
	if f.MemberID != nil {
		q = q.Joins("JOIN project_students ps ON ps.project_id = projects.project_id AND ps.user_id = ?", *f.MemberID)
	}
	if f.SupervisorID != nil {
		q = q.Where("projects.supervisor_id = ?", *f.SupervisorID)
	}
	if f.Status != "" {
		q = q.Where("projects.status = ?", f.Status)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, translate(err)
	}
	return projects, nil
}

// scopeByProject applies membership/supervision constraints through the
// parent project of a child table.
func scopeByProject(q *gorm.DB, table string, memberID, supervisorID *uint) *gorm.DB {
	if memberID != nil {
		q = q.Joins(fmt.Sprintf("JOIN project_students ps ON ps.project_id = %s.project_id AND ps.user_id = ?", table), *memberID)
	}
	if supervisorID != nil {
		q = q.Joins(fmt.Sprintf("JOIN projects pr ON pr.project_id = %s.project_id AND pr.supervisor_id = ?", table), *supervisorID)
	}
	return q
}

/* ==========================
   Milestones
   ========================== */

func (s *GormStore) CreateMilestone(m *models.Milestone) error {
	return translate(s.db.Omit("Project").Create(m).Error)
}

func (s *GormStore) GetMilestone(id uint) (*models.Milestone, error) {
	var m models.Milestone
	if err := s.db.First(&m, "milestone_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *GormStore) UpdateMilestone(m *models.Milestone) error {
	res := s.db.Model(&models.Milestone{}).Where("milestone_id = ?", m.MilestoneID).Updates(map[string]interface{}{
		"title":           m.Title,
		"description":     m.Description,
		"due_date":        m.DueDate,
		"status":          m.Status,
		"completion_date": m.CompletionDate,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Milestone{}).Where("milestone_id = ?", m.MilestoneID).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) DeleteMilestone(id uint) error {
	res := s.db.Delete(&models.Milestone{}, "milestone_id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListMilestones(f MilestoneFilter) ([]models.Milestone, error) {
	var milestones []models.Milestone
	if f.None {
		return milestones, nil
	}
	q := scopeByProject(s.db.Order("milestones.due_date ASC"), "milestones", f.MemberID, f.SupervisorID)
	if f.ProjectID != nil {
		q = q.Where("milestones.project_id = ?", *f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("milestones.status = ?", f.Status)
	}
	if err := q.Find(&milestones).Error; err != nil {
		return nil, translate(err)
	}
	return milestones, nil
}

/* ==========================
   Documents
   ========================== */

// CreateDocument assigns the next version for (project, name) under a row
// lock when no version is supplied. The duplicate-key retry covers the one
// transient race the lock cannot see: the very first version of a name, where
// there is no row to lock yet.
func (s *GormStore) CreateDocument(d *models.Document) error {
	create := func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if d.Version == 0 {
				var max sql.NullInt64
				row := tx.Model(&models.Document{}).
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("project_id = ? AND name = ?", d.ProjectID, d.Name).
					Select("MAX(version)").Row()
				if err := row.Scan(&max); err != nil {
					return err
				}
				d.Version = int(max.Int64) + 1
			}
			return tx.Omit("Project", "UploadedBy").Create(d).Error
		})
	}

	err := create()
	if isDuplicateKey(err) && d.Version == 1 {
		// lost the empty-set race; recompute once
		d.Version = 0
		err = create()
	}
	return translate(err)
}

func (s *GormStore) GetDocument(id uint) (*models.Document, error) {
	var d models.Document
	if err := s.db.First(&d, "document_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *GormStore) ListDocuments(f DocumentFilter) ([]models.Document, error) {
	var documents []models.Document
	if f.None {
		return documents, nil
	}
	q := scopeByProject(s.db.Order("documents.uploaded_at DESC"), "documents", f.MemberID, f.SupervisorID)
	if f.ProjectID != nil {
		q = q.Where("documents.project_id = ?", *f.ProjectID)
	}
	if f.Type != "" {
		q = q.Where("documents.type = ?", f.Type)
	}
	if err := q.Find(&documents).Error; err != nil {
		return nil, translate(err)
	}
	return documents, nil
}

/* ==========================
   Submissions & feedback
   ========================== */

func (s *GormStore) CreateSubmission(sub *models.Submission) error {
	return translate(s.db.Omit("Student", "Project").Create(sub).Error)
}

func (s *GormStore) GetSubmission(id uint) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.First(&sub, "submission_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *GormStore) ListSubmissions(f SubmissionFilter) ([]models.Submission, error) {
	var submissions []models.Submission
	if f.None {
		return submissions, nil
	}
	q := scopeByProject(s.db.Order("submissions.submitted_at DESC"), "submissions", nil, f.SupervisorID)
	if f.ProjectID != nil {
		q = q.Where("submissions.project_id = ?", *f.ProjectID)
	}
	if f.StudentID != nil {
		q = q.Where("submissions.student_id = ?", *f.StudentID)
	}
	if err := q.Find(&submissions).Error; err != nil {
		return nil, translate(err)
	}
	return submissions, nil
}

func (s *GormStore) GetOrCreateThread(submissionID uint) (*models.FeedbackThread, error) {
	var th models.FeedbackThread
	err := s.db.First(&th, "submission_id = ?", submissionID).Error
	if err == nil {
		return &th, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err)
	}

	var count int64
	if err := s.db.Model(&models.Submission{}).Where("submission_id = ?", submissionID).Count(&count).Error; err != nil {
		return nil, translate(err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	th = models.FeedbackThread{SubmissionID: submissionID}
	if err := s.db.Create(&th).Error; err != nil {
		if isDuplicateKey(err) {
			// concurrent lazy creation; fetch the winner
			if ferr := s.db.First(&th, "submission_id = ?", submissionID).Error; ferr == nil {
				return &th, nil
			}
		}
		return nil, translate(err)
	}
	return &th, nil
}

func (s *GormStore) GetThread(id uint) (*models.FeedbackThread, error) {
	var th models.FeedbackThread
	if err := s.db.First(&th, "thread_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &th, nil
}

func (s *GormStore) CreateFeedbackMessage(m *models.FeedbackMessage) error {
	return translate(s.db.Omit("Thread", "Sender").Create(m).Error)
}

func (s *GormStore) ListFeedbackMessages(f FeedbackMessageFilter) ([]models.FeedbackMessage, error) {
	var messages []models.FeedbackMessage
	if f.None {
		return messages, nil
	}
	q := s.db.
		Joins("JOIN feedback_threads ft ON ft.thread_id = feedback_messages.thread_id").
		Joins("JOIN submissions sub ON sub.submission_id = ft.submission_id").
		Order("feedback_messages.created_at ASC, feedback_messages.message_id ASC")
	if f.ThreadID != nil {
		q = q.Where("feedback_messages.thread_id = ?", *f.ThreadID)
	}
	if f.StudentID != nil {
		q = q.Where("sub.student_id = ?", *f.StudentID)
	}
	if f.SupervisorID != nil {
		q = q.Joins("JOIN projects pr ON pr.project_id = sub.project_id AND pr.supervisor_id = ?", *f.SupervisorID)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, translate(err)
	}
	return messages, nil
}

/* ==========================
   Rubrics & evaluations
   ========================== */

func (s *GormStore) CreateRubric(r *models.EvaluationRubric) error {
	return translate(s.db.Create(r).Error)
}

func (s *GormStore) GetRubric(id uint) (*models.EvaluationRubric, error) {
	var r models.EvaluationRubric
	if err := s.db.First(&r, "rubric_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) ListRubrics() ([]models.EvaluationRubric, error) {
	var rubrics []models.EvaluationRubric
	if err := s.db.Order("rubric_id ASC").Find(&rubrics).Error; err != nil {
		return nil, translate(err)
	}
	return rubrics, nil
}

func (s *GormStore) CreateEvaluation(e *models.Evaluation) error {
	// unique index on (project_id, evaluator_id) is the serialization point
	return translate(s.db.Omit("Project", "Evaluator", "Rubric").Create(e).Error)
}

func (s *GormStore) GetEvaluation(id uint) (*models.Evaluation, error) {
	var e models.Evaluation
	if err := s.db.First(&e, "evaluation_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *GormStore) ListEvaluations(f EvaluationFilter) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if f.None {
		return evaluations, nil
	}
	q := s.db.Order("evaluations.evaluation_id ASC")
	if f.ProjectID != nil {
		q = q.Where("evaluations.project_id = ?", *f.ProjectID)
	}
	if f.EvaluatorID != nil {
		q = q.Where("evaluations.evaluator_id = ?", *f.EvaluatorID)
	}
	if f.MemberID != nil {
		q = q.Joins("JOIN project_students ps ON ps.project_id = evaluations.project_id AND ps.user_id = ?", *f.MemberID)
	}
	if f.SupervisorOrEvaluatorID != nil {
		q = q.Joins("JOIN projects pr ON pr.project_id = evaluations.project_id").
			Where("pr.supervisor_id = ? OR evaluations.evaluator_id = ?", *f.SupervisorOrEvaluatorID, *f.SupervisorOrEvaluatorID)
	}
	if err := q.Find(&evaluations).Error; err != nil {
		return nil, translate(err)
	}
	return evaluations, nil
}

/* ==========================
   Notifications
   ========================== */

func (s *GormStore) CreateNotification(n *models.Notification) error {
	return translate(s.db.Omit("Recipient").Create(n).Error)
}

func (s *GormStore) GetNotification(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, "notification_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *GormStore) UpdateNotificationRead(id uint, read bool) error {
	res := s.db.Model(&models.Notification{}).Where("notification_id = ?", id).Update("is_read", read)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Notification{}).Where("notification_id = ?", id).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) MarkNotificationEmailSent(id uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND email_sent = ?", id, false).
		Update("email_sent", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Notification{}).Where("notification_id = ?", id).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) ListNotifications(f NotificationFilter) ([]models.Notification, error) {
	var notifications []models.Notification
	if f.None {
		return notifications, nil
	}
	q := s.db.Order("created_at DESC, notification_id DESC")
	if f.RecipientID != nil {
		q = q.Where("recipient_id = ?", *f.RecipientID)
	}
	if f.Unread != nil && *f.Unread {
		q = q.Where("is_read = ?", false)
	} else if f.Unread != nil {
		q = q.Where("is_read = ?", true)
	}
	if err := q.Find(&notifications).Error; err != nil {
		return nil, translate(err)
	}
	return notifications, nil
}

/* ==========================
   Aggregates
   ========================== */

func (s *GormStore) countBy(model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	if err := s.db.Model(model).
		Select(column + " AS `key`, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

func (s *GormStore) CountUsersByRole() (map[string]int64, error) {
	return s.countBy(&models.User{}, "role")
}

func (s *GormStore) CountProposalsByStatus() (map[string]int64, error) {
	return s.countBy(&models.ProjectProposal{}, "status")
}

func (s *GormStore) CountProjectsByStatus() (map[string]int64, error) {
	return s.countBy(&models.Project{}, "status")
}

func (s *GormStore) CountMilestonesByStatus() (map[string]int64, error) {
	return s.countBy(&models.Milestone{}, "status")
}

func (s *GormStore) CountDocumentsByType() (map[string]int64, error) {
	return s.countBy(&models.Document{}, "type")
}

func (s *GormStore) CountSubmissions() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Submission{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (s *GormStore) AverageEvaluationScore() (*float64, error) {
	var avg sql.NullFloat64
	row := s.db.Model(&models.Evaluation{}).Select("AVG(total_score)").Row()
	if err := row.Scan(&avg); err != nil {
		return nil, translate(err)
	}
	if !avg.Valid {
		return nil, nil
	}
	out := avg.Float64
	return &out, nil
}
