package services

import (
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// RubricInput carries the fields for a new evaluation rubric.
type RubricInput struct {
	Name     string
	Criteria []models.RubricCriterion
}

// EvaluationInput carries the fields for a new evaluation. The evaluator is
// always the acting user, never taken from the payload. TotalScore may be
// omitted (derived from the scores) or supplied, in which case it must agree
// with the sum.
type EvaluationInput struct {
	ProjectID  uint
	RubricID   *uint
	Scores     []models.CriterionScore
	TotalScore *float64
	Comments   string
}

type EvaluationService struct {
	store store.Store
	authz *Authorizer
	now   func() time.Time
}

func NewEvaluationService(st store.Store, authz *Authorizer) *EvaluationService {
	return &EvaluationService{store: st, authz: authz, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *EvaluationService) SetClock(now func() time.Time) {
	s.now = now
}

/* ==========================
   Rubrics
   ========================== */

// CreateRubric defines a rubric (admin only). The rubric's max score is the
// sum of its criteria caps.
func (s *EvaluationService) CreateRubric(actor *models.User, input RubricInput) (*models.EvaluationRubric, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityRubric, nil); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, Validationf("rubric name is required")
	}
	if len(input.Criteria) == 0 {
		return nil, Validationf("a rubric needs at least one criterion")
	}

	var max float64
	seen := make(map[string]bool, len(input.Criteria))
	for _, c := range input.Criteria {
		if c.Name == "" {
			return nil, Validationf("criterion name is required")
		}
		if seen[c.Name] {
			return nil, Validationf("duplicate criterion %q", c.Name)
		}
		if c.MaxScore <= 0 {
			return nil, Validationf("criterion %q needs a positive max score", c.Name)
		}
		seen[c.Name] = true
		max += c.MaxScore
	}

	r := &models.EvaluationRubric{
		Name:     input.Name,
		Criteria: input.Criteria,
		MaxScore: max,
	}
	if err := s.store.CreateRubric(r); err != nil {
		return nil, fromStore(err)
	}
	return r, nil
}

// ListRubrics returns all rubrics; rubrics are readable by everyone
// authenticated.
func (s *EvaluationService) ListRubrics(actor *models.User) ([]models.EvaluationRubric, error) {
	if err := s.authz.Authorize(actor, ActionList, EntityRubric, nil); err != nil {
		return nil, err
	}
	out, err := s.store.ListRubrics()
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// GetRubric returns one rubric.
func (s *EvaluationService) GetRubric(actor *models.User, id uint) (*models.EvaluationRubric, error) {
	if err := s.authz.Authorize(actor, ActionGet, EntityRubric, nil); err != nil {
		return nil, err
	}
	r, err := s.store.GetRubric(id)
	if err != nil {
		return nil, fromStore(err)
	}
	return r, nil
}

/* ==========================
   Evaluations
   ========================== */

// Create records an evaluation with evaluator = actor. One evaluation per
// (project, evaluator): the store's atomic check-then-insert turns the second
// attempt into ErrConflict even under concurrency.
func (s *EvaluationService) Create(actor *models.User, input EvaluationInput) (*models.Evaluation, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityEvaluation, nil); err != nil {
		return nil, err
	}

	if _, err := s.store.GetProject(input.ProjectID); err != nil {
		return nil, fromStore(err)
	}

	var rubric *models.EvaluationRubric
	if input.RubricID != nil {
		r, err := s.store.GetRubric(*input.RubricID)
		if err != nil {
			return nil, fromStore(err)
		}
		rubric = r
	}
	total, err := validateScores(rubric, input.Scores, input.TotalScore)
	if err != nil {
		return nil, err
	}

	e := &models.Evaluation{
		ProjectID:   input.ProjectID,
		EvaluatorID: actor.UserID,
		RubricID:    input.RubricID,
		Scores:      input.Scores,
		TotalScore:  total,
		Comments:    input.Comments,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateEvaluation(e); err != nil {
		return nil, fromStore(err)
	}
	return e, nil
}

// List returns the evaluations in the actor's scope.
func (s *EvaluationService) List(actor *models.User, projectID *uint) ([]models.Evaluation, error) {
	filter, err := s.authz.EvaluationScope(actor)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = projectID
	out, err := s.store.ListEvaluations(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one evaluation if the actor may see it.
func (s *EvaluationService) Get(actor *models.User, id uint) (*models.Evaluation, error) {
	e, err := s.store.GetEvaluation(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityEvaluation, e); err != nil {
		return nil, err
	}
	return e, nil
}

// validateScores checks the scores against the rubric criteria and resolves
// the total. With a rubric, every criterion must be scored exactly once
// within [0, max]. A supplied total that disagrees with the sum is rejected.
func validateScores(rubric *models.EvaluationRubric, scores []models.CriterionScore, suppliedTotal *float64) (float64, error) {
	if rubric != nil {
		byName := make(map[string]models.RubricCriterion, len(rubric.Criteria))
		for _, c := range rubric.Criteria {
			byName[c.Name] = c
		}
		if len(scores) != len(rubric.Criteria) {
			return 0, Validationf("expected %d scores for rubric %q, got %d", len(rubric.Criteria), rubric.Name, len(scores))
		}
		seen := make(map[string]bool, len(scores))
		for _, sc := range scores {
			criterion, ok := byName[sc.Name]
			if !ok {
				return 0, Validationf("score %q does not match any rubric criterion", sc.Name)
			}
			if seen[sc.Name] {
				return 0, Validationf("criterion %q scored twice", sc.Name)
			}
			seen[sc.Name] = true
			if sc.Score < 0 || sc.Score > criterion.MaxScore {
				return 0, Validationf("score for %q must be between 0 and %g", sc.Name, criterion.MaxScore)
			}
		}
	} else {
		for _, sc := range scores {
			if sc.Score < 0 {
				return 0, Validationf("score for %q must not be negative", sc.Name)
			}
		}
	}

	total := models.ScoreList(scores).Total()
	if suppliedTotal != nil {
		if len(scores) > 0 && *suppliedTotal != total {
			return 0, Validationf("total_score %g does not match the sum of scores %g", *suppliedTotal, total)
		}
		total = *suppliedTotal
	}
	if rubric != nil && total > rubric.MaxScore {
		return 0, Validationf("total_score %g exceeds rubric max %g", total, rubric.MaxScore)
	}
	return total, nil
}
