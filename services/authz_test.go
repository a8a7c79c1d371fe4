package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestNilActorIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	proposal := env.seedProposal(t, student, models.ProposalStatusPending)

	_, err := env.proposals.Get(nil, proposal.ProposalID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.proposals.List(nil, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStudentSeesOnlyOwnProposals(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, models.RoleStudent)
	bob := env.seedUser(t, models.RoleStudent)

	mine, err := env.proposals.Create(alice, ProposalInput{Title: "Mine"})
	require.NoError(t, err)
	_, err = env.proposals.Create(bob, ProposalInput{Title: "Theirs"})
	require.NoError(t, err)

	listed, err := env.proposals.List(alice, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ProposalID, listed[0].ProposalID)
}

func TestOutOfScopeProposalReadsAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, models.RoleStudent)
	bob := env.seedUser(t, models.RoleStudent)
	proposal := env.seedProposal(t, alice, models.ProposalStatusPending)

	// A foreign proposal and a missing one must be indistinguishable.
	_, err := env.proposals.Get(bob, proposal.ProposalID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.proposals.Get(bob, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupervisorSeesAssignedProposals(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)
	other := env.seedUser(t, models.RoleSupervisor)

	assigned := env.seedProposal(t, student, models.ProposalStatusPending)
	assigned.SupervisorID = &supervisor.UserID
	require.NoError(t, env.store.UpdateProposal(assigned))

	env.seedProposal(t, student, models.ProposalStatusPending)

	listed, err := env.proposals.List(supervisor, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, assigned.ProposalID, listed[0].ProposalID)

	listed, err = env.proposals.List(other, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAdminSeesEverything(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	alice := env.seedUser(t, models.RoleStudent)
	bob := env.seedUser(t, models.RoleStudent)

	env.seedProposal(t, alice, models.ProposalStatusPending)
	env.seedProposal(t, bob, models.ProposalStatusApproved)

	listed, err := env.proposals.List(admin, "")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSupervisorCannotCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	supervisor := env.seedUser(t, models.RoleSupervisor)

	_, err := env.proposals.Create(supervisor, ProposalInput{Title: "Nope"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateProposalPinsOwnerAndStatus(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)

	p, err := env.proposals.Create(student, ProposalInput{Title: "Pinned"})
	require.NoError(t, err)
	assert.Equal(t, student.UserID, p.StudentID)
	assert.Equal(t, models.ProposalStatusPending, p.Status)
}

func TestProjectScopePerRole(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	outsider := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)
	admin := env.seedUser(t, models.RoleAdmin)

	project := env.seedProject(t, supervisor, member)
	env.seedProject(t, nil) // unrelated project

	fromMember, err := env.projects.List(member, "")
	require.NoError(t, err)
	require.Len(t, fromMember, 1)
	assert.Equal(t, project.ProjectID, fromMember[0].ProjectID)

	fromSupervisor, err := env.projects.List(supervisor, "")
	require.NoError(t, err)
	require.Len(t, fromSupervisor, 1)
	assert.Equal(t, project.ProjectID, fromSupervisor[0].ProjectID)

	fromOutsider, err := env.projects.List(outsider, "")
	require.NoError(t, err)
	assert.Empty(t, fromOutsider)

	fromAdmin, err := env.projects.List(admin, "")
	require.NoError(t, err)
	assert.Len(t, fromAdmin, 2)

	// Out of scope project reads as not found.
	_, err = env.projects.Get(outsider, project.ProjectID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMilestoneVisibilityFollowsProject(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	outsider := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)

	project := env.seedProject(t, supervisor, member)
	milestone := env.seedMilestone(t, project, futureDate(), models.MilestoneStatusPending)

	got, err := env.milestones.Get(member, milestone.MilestoneID)
	require.NoError(t, err)
	assert.Equal(t, milestone.MilestoneID, got.MilestoneID)

	_, err = env.milestones.Get(outsider, milestone.MilestoneID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteApprovedProposalConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)
	proposal := env.seedProposal(t, student, models.ProposalStatusApproved)

	err := env.proposals.Delete(admin, proposal.ProposalID)
	assert.ErrorIs(t, err, ErrConflict)
}
