package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestApproveProposalAssignsActingSupervisor(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)

	proposal := env.seedProposal(t, student, models.ProposalStatusPending)
	proposal.SupervisorID = &supervisor.UserID
	require.NoError(t, env.store.UpdateProposal(proposal))

	approved, err := env.workflow.ApproveProposal(supervisor, proposal.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusApproved, approved.Status)
	require.NotNil(t, approved.SupervisorID)
	assert.Equal(t, supervisor.UserID, *approved.SupervisorID)

	// The student gets a success notification.
	notifs, err := env.notifications.List(student, nil)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeSuccess, notifs[0].Type)
}

func TestRejectProposalRequiresFeedback(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	admin := env.seedUser(t, models.RoleAdmin)
	proposal := env.seedProposal(t, student, models.ProposalStatusPending)

	_, err := env.workflow.RejectProposal(admin, proposal.ProposalID, "")
	assert.True(t, IsValidation(err))

	rejected, err := env.workflow.RejectProposal(admin, proposal.ProposalID, "scope too broad")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, rejected.Status)
	assert.Equal(t, "scope too broad", rejected.Feedback)
}

func TestProposalDecisionIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	admin := env.seedUser(t, models.RoleAdmin)

	proposal := env.seedProposal(t, student, models.ProposalStatusPending)
	_, err := env.workflow.ApproveProposal(admin, proposal.ProposalID)
	require.NoError(t, err)

	_, err = env.workflow.ApproveProposal(admin, proposal.ProposalID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.workflow.RejectProposal(admin, proposal.ProposalID, "late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStudentCannotDecideProposal(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	proposal := env.seedProposal(t, student, models.ProposalStatusPending)

	// Owner visibility holds, the role check fails.
	_, err := env.workflow.ApproveProposal(student, proposal.ProposalID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProjectTransitions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	project := env.seedProject(t, nil)

	onHold, err := env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOnHold, onHold.Status)

	// on_hold cannot complete directly.
	_, err = env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusActive, resumed.Status)

	completed, err := env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, completed.Status)
	assert.NotNil(t, completed.EndDate)

	// completed is terminal
	_, err = env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProjectTransitionNotifiesMembers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	memberA := env.seedUser(t, models.RoleStudent)
	memberB := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, memberA, memberB)

	_, err := env.workflow.TransitionProject(admin, project.ProjectID, models.ProjectStatusOnHold)
	require.NoError(t, err)

	for _, member := range []*models.User{memberA, memberB} {
		notifs, err := env.notifications.List(member, nil)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, models.NotificationTypeInfo, notifs[0].Type)
		assert.Contains(t, notifs[0].Message, models.ProjectStatusOnHold)
	}
}

func TestStudentCannotTransitionProject(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	_, err := env.workflow.TransitionProject(member, project.ProjectID, models.ProjectStatusOnHold)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeriveMilestoneStatus(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	m := &models.Milestone{DueDate: due, Status: models.MilestoneStatusPending}

	assert.Equal(t, models.MilestoneStatusPending,
		DeriveMilestoneStatus(m, due))
	assert.Equal(t, models.MilestoneStatusPending,
		DeriveMilestoneStatus(m, due.Add(23*time.Hour)))
	assert.Equal(t, models.MilestoneStatusOverdue,
		DeriveMilestoneStatus(m, due.AddDate(0, 0, 1)))

	// Derivation never demotes a completed milestone.
	m.Status = models.MilestoneStatusCompleted
	assert.Equal(t, models.MilestoneStatusCompleted,
		DeriveMilestoneStatus(m, due.AddDate(0, 0, 30)))
}

func TestCompleteMilestoneStampsDate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	project := env.seedProject(t, nil)
	milestone := env.seedMilestone(t, project, futureDate(), models.MilestoneStatusPending)

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	env.workflow.SetClock(fixedClock(at))

	done, err := env.workflow.CompleteMilestone(admin, milestone.MilestoneID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusCompleted, done.Status)
	require.NotNil(t, done.CompletionDate)
	assert.Equal(t, at, *done.CompletionDate)

	_, err = env.workflow.CompleteMilestone(admin, milestone.MilestoneID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLateCompletionAllowed(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	project := env.seedProject(t, nil)
	milestone := env.seedMilestone(t, project, pastDate(), models.MilestoneStatusOverdue)

	done, err := env.workflow.CompleteMilestone(admin, milestone.MilestoneID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusCompleted, done.Status)
}

func TestSweepOverdueMilestonesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t, nil)

	env.seedMilestone(t, project, pastDate(), models.MilestoneStatusPending)
	env.seedMilestone(t, project, futureDate(), models.MilestoneStatusPending)
	env.seedMilestone(t, project, pastDate(), models.MilestoneStatusCompleted)

	swept, err := env.workflow.SweepOverdueMilestones()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	swept, err = env.workflow.SweepOverdueMilestones()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestProjectRequiresApprovedProposal(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)
	pending := env.seedProposal(t, student, models.ProposalStatusPending)

	_, err := env.projects.Create(admin, ProjectInput{ProposalID: pending.ProposalID})
	assert.True(t, IsValidation(err))
}

func TestCreateForAnotherSupervisorReturnsProject(t *testing.T) {
	env := newTestEnv(t)
	creator := env.seedUser(t, models.RoleSupervisor)
	assignee := env.seedUser(t, models.RoleSupervisor)
	student := env.seedUser(t, models.RoleStudent)
	approved := env.seedProposal(t, student, models.ProposalStatusApproved)

	// the created row comes back even though it lands outside the
	// creator's own read scope
	project, err := env.projects.Create(creator, ProjectInput{
		ProposalID:   approved.ProposalID,
		SupervisorID: &assignee.UserID,
	})
	require.NoError(t, err)
	require.NotNil(t, project.SupervisorID)
	assert.Equal(t, assignee.UserID, *project.SupervisorID)

	_, err = env.projects.Get(creator, project.ProjectID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOneProjectPerProposal(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)
	approved := env.seedProposal(t, student, models.ProposalStatusApproved)

	first, err := env.projects.Create(admin, ProjectInput{ProposalID: approved.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, approved.ProposalID, first.ProposalID)
	assert.Equal(t, models.ProjectStatusActive, first.Status)

	_, err = env.projects.Create(admin, ProjectInput{ProposalID: approved.ProposalID})
	assert.ErrorIs(t, err, ErrConflict)
}
