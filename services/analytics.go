package services

import (
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// AnalyticsReport is a point-in-time snapshot across the whole lifecycle.
// Every known role/status/type key is present even when its count is zero.
type AnalyticsReport struct {
	UserCounts         map[string]int64 `json:"user_counts"`
	ProposalCounts     map[string]int64 `json:"proposal_counts"`
	ProjectCounts      map[string]int64 `json:"project_counts"`
	MilestoneCounts    map[string]int64 `json:"milestone_counts"`
	DocumentCounts     map[string]int64 `json:"document_counts"`
	TotalSubmissions   int64            `json:"total_submissions"`
	AvgEvaluationScore *float64         `json:"avg_evaluation_score"`
	OverdueMilestones  int64            `json:"overdue_milestones"`
}

// AnalyticsService computes administrative reporting aggregates. Read-only
// and admin-only; nothing is cached or incrementally maintained.
type AnalyticsService struct {
	store store.Store
	now   func() time.Time
}

func NewAnalyticsService(st store.Store) *AnalyticsService {
	return &AnalyticsService{store: st, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// ComputeSnapshot builds the report from current store state. The average
// evaluation score is nil when no evaluations exist.
func (s *AnalyticsService) ComputeSnapshot(actor *models.User) (*AnalyticsReport, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	report := &AnalyticsReport{}

	var err error
	if report.UserCounts, err = s.countsWithKeys(s.store.CountUsersByRole,
		models.RoleStudent, models.RoleSupervisor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if report.ProposalCounts, err = s.countsWithKeys(s.store.CountProposalsByStatus,
		models.ProposalStatusPending, models.ProposalStatusApproved, models.ProposalStatusRejected); err != nil {
		return nil, err
	}
	if report.ProjectCounts, err = s.countsWithKeys(s.store.CountProjectsByStatus,
		models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusOnHold); err != nil {
		return nil, err
	}
	if report.MilestoneCounts, err = s.countsWithKeys(s.store.CountMilestonesByStatus,
		models.MilestoneStatusPending, models.MilestoneStatusCompleted, models.MilestoneStatusOverdue); err != nil {
		return nil, err
	}
	if report.DocumentCounts, err = s.countsWithKeys(s.store.CountDocumentsByType,
		models.DocumentTypeReport, models.DocumentTypeCode, models.DocumentTypePresentation, models.DocumentTypeOther); err != nil {
		return nil, err
	}

	if report.TotalSubmissions, err = s.store.CountSubmissions(); err != nil {
		return nil, fromStore(err)
	}
	if report.AvgEvaluationScore, err = s.store.AverageEvaluationScore(); err != nil {
		return nil, fromStore(err)
	}
	if report.OverdueMilestones, err = s.countOverdueMilestones(); err != nil {
		return nil, err
	}
	return report, nil
}

// countOverdueMilestones counts milestones currently overdue: rows already
// stored as overdue plus pending rows whose derived status reads overdue now.
func (s *AnalyticsService) countOverdueMilestones() (int64, error) {
	overdue, err := s.store.ListMilestones(store.MilestoneFilter{Status: models.MilestoneStatusOverdue})
	if err != nil {
		return 0, fromStore(err)
	}
	pending, err := s.store.ListMilestones(store.MilestoneFilter{Status: models.MilestoneStatusPending})
	if err != nil {
		return 0, fromStore(err)
	}

	now := s.now()
	count := int64(len(overdue))
	for i := range pending {
		if DeriveMilestoneStatus(&pending[i], now) == models.MilestoneStatusOverdue {
			count++
		}
	}
	return count, nil
}

func (s *AnalyticsService) countsWithKeys(fetch func() (map[string]int64, error), keys ...string) (map[string]int64, error) {
	counts, err := fetch()
	if err != nil {
		return nil, fromStore(err)
	}
	out := make(map[string]int64, len(keys))
	for _, key := range keys {
		out[key] = counts[key]
	}
	return out, nil
}
