package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestCreateSubmissionRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	outsider := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	sub, err := env.submissions.Create(member, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Sprint 1 deliverable",
		FilePath:  "submissions/s1.zip",
	})
	require.NoError(t, err)
	assert.Equal(t, member.UserID, sub.StudentID)

	// A non-member cannot even learn that the project exists.
	_, err = env.submissions.Create(outsider, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Sneaky",
		FilePath:  "submissions/x.zip",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupervisorCannotSubmit(t *testing.T) {
	env := newTestEnv(t)
	supervisor := env.seedUser(t, models.RoleSupervisor)
	project := env.seedProject(t, supervisor)

	_, err := env.submissions.Create(supervisor, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Nope",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmissionGetsAThread(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	sub, err := env.submissions.Create(member, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Deliverable",
	})
	require.NoError(t, err)

	th, err := env.submissions.GetThread(member, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, sub.SubmissionID, th.SubmissionID)

	// Repeated reads return the same thread.
	again, err := env.submissions.GetThread(member, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, th.ThreadID, again.ThreadID)
}

func TestFeedbackLimitedToThreadParties(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	classmate := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)
	stranger := env.seedUser(t, models.RoleSupervisor)
	admin := env.seedUser(t, models.RoleAdmin)

	project := env.seedProject(t, supervisor, member, classmate)
	sub, err := env.submissions.Create(member, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Deliverable",
	})
	require.NoError(t, err)

	_, err = env.submissions.AddFeedbackMessage(member, sub.SubmissionID, "please review")
	require.NoError(t, err)
	_, err = env.submissions.AddFeedbackMessage(supervisor, sub.SubmissionID, "looks good")
	require.NoError(t, err)

	// A project classmate who did not submit stays read-only.
	_, err = env.submissions.AddFeedbackMessage(classmate, sub.SubmissionID, "me too")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.submissions.AddFeedbackMessage(stranger, sub.SubmissionID, "hello")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.submissions.AddFeedbackMessage(admin, sub.SubmissionID, "admin note")
	assert.ErrorIs(t, err, ErrForbidden)

	messages, err := env.submissions.ListFeedbackMessages(member, sub.SubmissionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "please review", messages[0].Message)
	assert.Equal(t, "looks good", messages[1].Message)
}

func TestFeedbackNotifiesCounterpart(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)
	project := env.seedProject(t, supervisor, member)

	sub, err := env.submissions.Create(member, SubmissionInput{
		ProjectID: project.ProjectID,
		Title:     "Deliverable",
	})
	require.NoError(t, err)

	_, err = env.submissions.AddFeedbackMessage(member, sub.SubmissionID, "done")
	require.NoError(t, err)

	toSupervisor, err := env.notifications.List(supervisor, nil)
	require.NoError(t, err)
	require.Len(t, toSupervisor, 1)

	_, err = env.submissions.AddFeedbackMessage(supervisor, sub.SubmissionID, "rework section 2")
	require.NoError(t, err)

	toStudent, err := env.notifications.List(member, nil)
	require.NoError(t, err)
	require.Len(t, toStudent, 1)
	assert.Contains(t, toStudent[0].Message, "Deliverable")
}
