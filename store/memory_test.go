package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func seedProjectTree(t *testing.T, st *MemoryStore) (*models.Project, *models.User) {
	t.Helper()

	student := &models.User{Email: "s@example.edu", Role: models.RoleStudent}
	require.NoError(t, st.CreateUser(student))

	proposal := &models.ProjectProposal{
		Title:     "Tree",
		Status:    models.ProposalStatusApproved,
		StudentID: student.UserID,
	}
	require.NoError(t, st.CreateProposal(proposal))

	project := &models.Project{
		ProposalID: proposal.ProposalID,
		Title:      "Tree",
		Status:     models.ProjectStatusActive,
	}
	require.NoError(t, st.CreateProject(project, []uint{student.UserID}))
	return project, student
}

func TestProjectProposalUniqueness(t *testing.T) {
	st := NewMemoryStore()
	project, _ := seedProjectTree(t, st)

	dup := &models.Project{ProposalID: project.ProposalID, Title: "Dup", Status: models.ProjectStatusActive}
	err := st.CreateProject(dup, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteProjectCascade(t *testing.T) {
	st := NewMemoryStore()
	project, student := seedProjectTree(t, st)

	milestone := &models.Milestone{ProjectID: project.ProjectID, Title: "m", DueDate: time.Now(), Status: models.MilestoneStatusPending}
	require.NoError(t, st.CreateMilestone(milestone))

	doc := &models.Document{ProjectID: project.ProjectID, Name: "report", Type: models.DocumentTypeReport}
	require.NoError(t, st.CreateDocument(doc))

	sub := &models.Submission{ProjectID: project.ProjectID, StudentID: student.UserID, Title: "sub"}
	require.NoError(t, st.CreateSubmission(sub))
	thread, err := st.GetOrCreateThread(sub.SubmissionID)
	require.NoError(t, err)
	require.NoError(t, st.CreateFeedbackMessage(&models.FeedbackMessage{ThreadID: thread.ThreadID, SenderID: student.UserID, Message: "hi"}))

	eval := &models.Evaluation{ProjectID: project.ProjectID, EvaluatorID: student.UserID, TotalScore: 10}
	require.NoError(t, st.CreateEvaluation(eval))

	require.NoError(t, st.DeleteProjectCascade(project.ProjectID))

	_, err = st.GetProject(project.ProjectID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetMilestone(milestone.MilestoneID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetDocument(doc.DocumentID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetSubmission(sub.SubmissionID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetEvaluation(eval.EvaluationID)
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err := st.ListFeedbackMessages(FeedbackMessageFilter{ThreadID: &thread.ThreadID})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// The student account and the proposal survive the cascade.
	_, err = st.GetUser(student.UserID)
	assert.NoError(t, err)
}

func TestDocumentVersionCounterPerName(t *testing.T) {
	st := NewMemoryStore()
	project, _ := seedProjectTree(t, st)

	a1 := &models.Document{ProjectID: project.ProjectID, Name: "report", Type: models.DocumentTypeReport}
	require.NoError(t, st.CreateDocument(a1))
	a2 := &models.Document{ProjectID: project.ProjectID, Name: "report", Type: models.DocumentTypeReport}
	require.NoError(t, st.CreateDocument(a2))
	b1 := &models.Document{ProjectID: project.ProjectID, Name: "slides", Type: models.DocumentTypePresentation}
	require.NoError(t, st.CreateDocument(b1))

	assert.Equal(t, 1, a1.Version)
	assert.Equal(t, 2, a2.Version)
	assert.Equal(t, 1, b1.Version)
}

func TestNotificationEmailSentIsSetOnce(t *testing.T) {
	st := NewMemoryStore()

	user := &models.User{Email: "n@example.edu", Role: models.RoleStudent}
	require.NoError(t, st.CreateUser(user))

	n := &models.Notification{RecipientID: user.UserID, Message: "hi", Type: models.NotificationTypeInfo}
	require.NoError(t, st.CreateNotification(n))

	require.NoError(t, st.MarkNotificationEmailSent(n.NotificationID))

	// Marking again is a no-op, not an error.
	require.NoError(t, st.MarkNotificationEmailSent(n.NotificationID))

	stored, err := st.GetNotification(n.NotificationID)
	require.NoError(t, err)
	assert.True(t, stored.EmailSent)
}
