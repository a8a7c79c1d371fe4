package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetProjects returns projects visible to the acting user.
func GetProjects(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	projects, err := projectService.List(actor, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
	})
}

// GetProject returns a single project by ID.
func GetProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	project, err := projectService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CreateProject creates a project from an approved proposal. Staff only.
func CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		ProposalID   uint       `json:"proposal_id" binding:"required"`
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		SupervisorID *uint      `json:"supervisor_id"`
		StudentIDs   []uint     `json:"student_ids"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	project, err := projectService.Create(actor, services.ProjectInput{
		ProposalID:   req.ProposalID,
		Title:        utils.SanitizeInput(req.Title),
		Description:  utils.SanitizeInput(req.Description),
		SupervisorID: req.SupervisorID,
		StudentIDs:   req.StudentIDs,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"project": project,
		"message": "Project created successfully",
	})
}

// UpdateProject edits project fields. Status changes go through
// TransitionProject.
func UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		SupervisorID *uint      `json:"supervisor_id"`
		StudentIDs   []uint     `json:"student_ids"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	project, err := projectService.Update(actor, id, services.ProjectUpdate{
		Title:        req.Title,
		Description:  req.Description,
		SupervisorID: req.SupervisorID,
		StudentIDs:   req.StudentIDs,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"message": "Project updated successfully",
	})
}

// TransitionProject changes a project's status along the allowed workflow.
func TransitionProject(c *gin.Context) {
	type TransitionRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	project, err := workflowSvc.TransitionProject(actor, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"message": "Project status updated",
	})
}

// DeleteProject removes a project and everything attached to it. Admin only.
func DeleteProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := projectService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
