package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fyp-management-api/services"
	"fyp-management-api/store"
)

var (
	db store.Store

	authz           *services.Authorizer
	userService     *services.UserService
	proposalService *services.ProposalService
	projectService  *services.ProjectService
	milestoneSvc    *services.MilestoneService
	documentSvc     *services.DocumentService
	submissionSvc   *services.SubmissionService
	evaluationSvc   *services.EvaluationService
	notificationSvc *services.NotificationService
	workflowSvc     *services.WorkflowService
	analyticsSvc    *services.AnalyticsService
)

// Init wires the controller layer to its backing store and mailer. Must be
// called once before the routes are registered.
func Init(st store.Store, mailer services.Mailer) {
	db = st
	authz = services.NewAuthorizer(st)
	notificationSvc = services.NewNotificationService(st, authz, mailer)
	userService = services.NewUserService(st)
	proposalService = services.NewProposalService(st, authz, notificationSvc)
	projectService = services.NewProjectService(st, authz)
	milestoneSvc = services.NewMilestoneService(st, authz)
	documentSvc = services.NewDocumentService(st, authz)
	submissionSvc = services.NewSubmissionService(st, authz, notificationSvc)
	evaluationSvc = services.NewEvaluationService(st, authz)
	workflowSvc = services.NewWorkflowService(st, authz, notificationSvc)
	analyticsSvc = services.NewAnalyticsService(st)
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paramID parses the :id path parameter. Responds 400 and returns false on
// malformed input.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional numeric query parameter, returning nil when
// absent or malformed.
func queryUint(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}
