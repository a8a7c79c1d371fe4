package services

import (
	"fyp-management-api/models"
	"fyp-management-api/store"
)

// Action is an operation class checked by the authorization engine.
type Action string

const (
	ActionList   Action = "list"
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EntityType names the entities the engine knows rules for.
type EntityType string

const (
	EntityProposal        EntityType = "proposal"
	EntityProject         EntityType = "project"
	EntityMilestone       EntityType = "milestone"
	EntityDocument        EntityType = "document"
	EntitySubmission      EntityType = "submission"
	EntityFeedbackMessage EntityType = "feedback_message"
	EntityRubric          EntityType = "rubric"
	EntityEvaluation      EntityType = "evaluation"
	EntityNotification    EntityType = "notification"
)

// Authorizer decides, per (actor, action, entity), whether an operation is
// allowed and narrows listings to the records the actor may see.
//
// Precedence: object-level rule, then role default, then deny. Visibility is
// always the union of "I am the data subject" and "I am the responsible
// staff", widening to everything for admin. Supervisor scope is a sibling of
// student scope, not a superset, so every check evaluates role-specific
// predicates instead of ranking roles.
//
// Object checks re-fetch parent references (milestone -> project, feedback
// message -> thread -> submission -> project) through the store so the
// decision reflects the parent chain at check time.
type Authorizer struct {
	store store.Store
}

func NewAuthorizer(st store.Store) *Authorizer {
	return &Authorizer{store: st}
}

// Authorize returns nil when actor may perform action on the given entity.
// object carries the concrete record for object-level checks and may be nil
// for type-level checks (list, create). A record the actor cannot see is
// reported as ErrNotFound, never ErrForbidden, so existence does not leak.
func (a *Authorizer) Authorize(actor *models.User, action Action, entity EntityType, object interface{}) error {
	// scope() is undefined without an actor, so every path authenticates first
	if actor == nil {
		return ErrUnauthorized
	}

	switch entity {
	case EntityProposal:
		return a.authorizeProposal(actor, action, object)
	case EntityProject:
		return a.authorizeProject(actor, action, object)
	case EntityMilestone:
		return a.authorizeMilestone(actor, action, object)
	case EntityDocument:
		return a.authorizeDocument(actor, action, object)
	case EntitySubmission:
		return a.authorizeSubmission(actor, action, object)
	case EntityFeedbackMessage:
		return a.authorizeFeedbackMessage(actor, action, object)
	case EntityRubric:
		return a.authorizeRubric(actor, action)
	case EntityEvaluation:
		return a.authorizeEvaluation(actor, action, object)
	case EntityNotification:
		return a.authorizeNotification(actor, action, object)
	}
	return ErrForbidden
}

/* ==========================
   Per-entity rules
   ========================== */

func (a *Authorizer) authorizeProposal(actor *models.User, action Action, object interface{}) error {
	p, _ := object.(*models.ProjectProposal)
	if p != nil && !a.canSeeProposal(actor, p) {
		return ErrNotFound
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate:
		if actor.IsStudent() {
			return nil
		}
		return ErrForbidden
	case ActionUpdate, ActionDelete:
		if actor.IsStaff() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeProject(actor *models.User, action Action, object interface{}) error {
	p, _ := object.(*models.Project)
	if p != nil && !a.canSeeProject(actor, p) {
		return ErrNotFound
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if actor.IsStaff() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeMilestone(actor *models.User, action Action, object interface{}) error {
	m, _ := object.(*models.Milestone)
	if m != nil {
		project, err := a.store.GetProject(m.ProjectID)
		if err != nil {
			return fromStore(err)
		}
		if !a.canSeeProject(actor, project) {
			return ErrNotFound
		}
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if actor.IsStaff() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeDocument(actor *models.User, action Action, object interface{}) error {
	d, _ := object.(*models.Document)
	if d != nil {
		project, err := a.store.GetProject(d.ProjectID)
		if err != nil {
			return fromStore(err)
		}
		if !a.canSeeProject(actor, project) {
			return ErrNotFound
		}
	}
	switch action {
	case ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete:
		// any authenticated actor; visibility alone restricts reach
		return nil
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeSubmission(actor *models.User, action Action, object interface{}) error {
	sub, _ := object.(*models.Submission)
	if sub != nil && !a.canSeeSubmission(actor, sub) {
		return ErrNotFound
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate:
		if actor.IsStudent() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeFeedbackMessage(actor *models.User, action Action, object interface{}) error {
	m, _ := object.(*models.FeedbackMessage)
	if m != nil {
		sub, err := a.submissionOfMessage(m)
		if err != nil {
			return err
		}
		if !a.canSeeSubmission(actor, sub) {
			return ErrNotFound
		}
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate:
		// creation stays with the two parties of the thread; checked against
		// the parent submission by the submission service
		if actor.IsStudent() || actor.IsSupervisor() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeRubric(actor *models.User, action Action) error {
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if actor.IsAdmin() {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeEvaluation(actor *models.User, action Action, object interface{}) error {
	e, _ := object.(*models.Evaluation)
	if e != nil {
		visible, err := a.canSeeEvaluation(actor, e)
		if err != nil {
			return err
		}
		if !visible {
			return ErrNotFound
		}
	}
	switch action {
	case ActionList, ActionGet:
		return nil
	case ActionCreate:
		// peer and supervisor evaluations alike; the evaluation
		// service pins evaluator = actor
		return nil
	}
	return ErrForbidden
}

func (a *Authorizer) authorizeNotification(actor *models.User, action Action, object interface{}) error {
	n, _ := object.(*models.Notification)
	if n != nil && !actor.IsAdmin() && n.RecipientID != actor.UserID {
		return ErrNotFound
	}
	switch action {
	case ActionList, ActionGet, ActionCreate:
		return nil
	case ActionUpdate:
		// only the read flag is mutable, by recipient or admin; the recipient
		// constraint is already the visibility rule above
		return nil
	}
	return ErrForbidden
}

/* ==========================
   Visibility predicates
   ========================== */

func (a *Authorizer) canSeeProposal(actor *models.User, p *models.ProjectProposal) bool {
	switch actor.Role {
	case models.RoleStudent:
		return p.StudentID == actor.UserID
	case models.RoleSupervisor:
		return p.SupervisorID != nil && *p.SupervisorID == actor.UserID
	case models.RoleAdmin:
		return true
	}
	return false
}

func (a *Authorizer) canSeeProject(actor *models.User, p *models.Project) bool {
	switch actor.Role {
	case models.RoleStudent:
		return p.HasStudent(actor.UserID)
	case models.RoleSupervisor:
		return p.SupervisorID != nil && *p.SupervisorID == actor.UserID
	case models.RoleAdmin:
		return true
	}
	return false
}

func (a *Authorizer) canSeeSubmission(actor *models.User, sub *models.Submission) bool {
	switch actor.Role {
	case models.RoleStudent:
		return sub.StudentID == actor.UserID
	case models.RoleSupervisor:
		project, err := a.store.GetProject(sub.ProjectID)
		if err != nil {
			return false
		}
		return project.SupervisorID != nil && *project.SupervisorID == actor.UserID
	case models.RoleAdmin:
		return true
	}
	return false
}

func (a *Authorizer) canSeeEvaluation(actor *models.User, e *models.Evaluation) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.IsSupervisor() && e.EvaluatorID == actor.UserID {
		return true, nil
	}
	project, err := a.store.GetProject(e.ProjectID)
	if err != nil {
		return false, fromStore(err)
	}
	if actor.IsStudent() {
		return project.HasStudent(actor.UserID), nil
	}
	return project.SupervisorID != nil && *project.SupervisorID == actor.UserID, nil
}

func (a *Authorizer) submissionOfMessage(m *models.FeedbackMessage) (*models.Submission, error) {
	thread, err := a.store.GetThread(m.ThreadID)
	if err != nil {
		return nil, fromStore(err)
	}
	sub, err := a.store.GetSubmission(thread.SubmissionID)
	if err != nil {
		return nil, fromStore(err)
	}
	return sub, nil
}

/* ==========================
   Listing scopes
   ========================== */

// ProposalScope narrows proposal listings to the actor's visible rows.
func (a *Authorizer) ProposalScope(actor *models.User) (store.ProposalFilter, error) {
	if actor == nil {
		return store.ProposalFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.ProposalFilter{StudentID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.ProposalFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.ProposalFilter{}, nil
	}
	return store.ProposalFilter{None: true}, nil
}

// ProjectScope narrows project listings to the actor's visible rows.
func (a *Authorizer) ProjectScope(actor *models.User) (store.ProjectFilter, error) {
	if actor == nil {
		return store.ProjectFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.ProjectFilter{MemberID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.ProjectFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.ProjectFilter{}, nil
	}
	return store.ProjectFilter{None: true}, nil
}

// MilestoneScope narrows milestone listings via the parent project.
func (a *Authorizer) MilestoneScope(actor *models.User) (store.MilestoneFilter, error) {
	if actor == nil {
		return store.MilestoneFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.MilestoneFilter{MemberID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.MilestoneFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.MilestoneFilter{}, nil
	}
	return store.MilestoneFilter{None: true}, nil
}

// DocumentScope narrows document listings via the parent project.
func (a *Authorizer) DocumentScope(actor *models.User) (store.DocumentFilter, error) {
	if actor == nil {
		return store.DocumentFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.DocumentFilter{MemberID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.DocumentFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.DocumentFilter{}, nil
	}
	return store.DocumentFilter{None: true}, nil
}

// SubmissionScope narrows submission listings.
func (a *Authorizer) SubmissionScope(actor *models.User) (store.SubmissionFilter, error) {
	if actor == nil {
		return store.SubmissionFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.SubmissionFilter{StudentID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.SubmissionFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.SubmissionFilter{}, nil
	}
	return store.SubmissionFilter{None: true}, nil
}

// FeedbackMessageScope narrows feedback message listings via the parent
// submission.
func (a *Authorizer) FeedbackMessageScope(actor *models.User) (store.FeedbackMessageFilter, error) {
	if actor == nil {
		return store.FeedbackMessageFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.FeedbackMessageFilter{StudentID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.FeedbackMessageFilter{SupervisorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.FeedbackMessageFilter{}, nil
	}
	return store.FeedbackMessageFilter{None: true}, nil
}

// EvaluationScope narrows evaluation listings. The supervisor scope is the
// union of supervised projects and own evaluations.
func (a *Authorizer) EvaluationScope(actor *models.User) (store.EvaluationFilter, error) {
	if actor == nil {
		return store.EvaluationFilter{None: true}, ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleStudent:
		return store.EvaluationFilter{MemberID: &actor.UserID}, nil
	case models.RoleSupervisor:
		return store.EvaluationFilter{SupervisorOrEvaluatorID: &actor.UserID}, nil
	case models.RoleAdmin:
		return store.EvaluationFilter{}, nil
	}
	return store.EvaluationFilter{None: true}, nil
}

// NotificationScope narrows notification listings to the actor's own rows,
// or everything for admin.
func (a *Authorizer) NotificationScope(actor *models.User) (store.NotificationFilter, error) {
	if actor == nil {
		return store.NotificationFilter{None: true}, ErrUnauthorized
	}
	if actor.IsAdmin() {
		return store.NotificationFilter{}, nil
	}
	return store.NotificationFilter{RecipientID: &actor.UserID}, nil
}
