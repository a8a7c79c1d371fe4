package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestSnapshotIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)

	_, err := env.analytics.ComputeSnapshot(student)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.analytics.ComputeSnapshot(supervisor)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.analytics.ComputeSnapshot(nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSnapshotZeroFillsAllKeys(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)

	report, err := env.analytics.ComputeSnapshot(admin)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		models.RoleStudent:    0,
		models.RoleSupervisor: 0,
		models.RoleAdmin:      1,
	}, report.UserCounts)
	assert.Equal(t, map[string]int64{
		models.ProposalStatusPending:  0,
		models.ProposalStatusApproved: 0,
		models.ProposalStatusRejected: 0,
	}, report.ProposalCounts)
	assert.Equal(t, map[string]int64{
		models.ProjectStatusActive:    0,
		models.ProjectStatusCompleted: 0,
		models.ProjectStatusOnHold:    0,
	}, report.ProjectCounts)
	assert.Equal(t, map[string]int64{
		models.MilestoneStatusPending:   0,
		models.MilestoneStatusCompleted: 0,
		models.MilestoneStatusOverdue:   0,
	}, report.MilestoneCounts)
	assert.Equal(t, map[string]int64{
		models.DocumentTypeReport:       0,
		models.DocumentTypeCode:         0,
		models.DocumentTypePresentation: 0,
		models.DocumentTypeOther:        0,
	}, report.DocumentCounts)

	assert.Zero(t, report.TotalSubmissions)
	assert.Nil(t, report.AvgEvaluationScore)
	assert.Zero(t, report.OverdueMilestones)
}

func TestSnapshotAggregates(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)
	supervisor := env.seedUser(t, models.RoleSupervisor)

	env.seedProposal(t, student, models.ProposalStatusPending)
	project := env.seedProject(t, supervisor, student)

	// One pending milestone already past due counts as overdue without a sweep.
	env.seedMilestone(t, project, pastDate(), models.MilestoneStatusPending)
	env.seedMilestone(t, project, futureDate(), models.MilestoneStatusPending)

	_, err := env.evaluations.Create(supervisor, EvaluationInput{
		ProjectID: project.ProjectID,
		Scores:    []models.CriterionScore{{Name: "design", Score: 30}},
	})
	require.NoError(t, err)

	report, err := env.analytics.ComputeSnapshot(admin)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.UserCounts[models.RoleAdmin])
	assert.Equal(t, int64(1), report.UserCounts[models.RoleStudent])
	assert.Equal(t, int64(1), report.ProposalCounts[models.ProposalStatusPending])
	assert.Equal(t, int64(1), report.ProposalCounts[models.ProposalStatusApproved])
	assert.Equal(t, int64(1), report.ProjectCounts[models.ProjectStatusActive])
	assert.Equal(t, int64(2), report.MilestoneCounts[models.MilestoneStatusPending])
	assert.Equal(t, int64(1), report.OverdueMilestones)

	require.NotNil(t, report.AvgEvaluationScore)
	assert.Equal(t, 30.0, *report.AvgEvaluationScore)
}
