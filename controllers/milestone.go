package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// parseDueDate accepts either a bare date or a full RFC3339 timestamp.
func parseDueDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// GetMilestones returns milestones visible to the acting user, optionally
// filtered by project and status.
func GetMilestones(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	milestones, err := milestoneSvc.List(actor, queryUint(c, "project_id"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestones": milestones,
		"total":      len(milestones),
	})
}

// GetMilestone returns a single milestone by ID.
func GetMilestone(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	milestone, err := milestoneSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestone": milestone})
}

// CreateMilestone adds a milestone to a project. Staff only.
func CreateMilestone(c *gin.Context) {
	type CreateMilestoneRequest struct {
		ProjectID   uint   `json:"project_id" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date" binding:"required"`
	}

	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date format"})
		return
	}

	actor := middleware.CurrentUser(c)
	milestone, err := milestoneSvc.Create(actor, services.MilestoneInput{
		ProjectID:   req.ProjectID,
		Title:       utils.SanitizeInput(req.Title),
		Description: utils.SanitizeInput(req.Description),
		DueDate:     dueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"milestone": milestone,
		"message":   "Milestone created successfully",
	})
}

// UpdateMilestone edits milestone fields. Completion goes through
// CompleteMilestone.
func UpdateMilestone(c *gin.Context) {
	type UpdateMilestoneRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
	}

	var req UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.MilestoneUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.DueDate != nil {
		dueDate, ok := parseDueDate(*req.DueDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date format"})
			return
		}
		update.DueDate = &dueDate
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	milestone, err := milestoneSvc.Update(actor, id, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestone": milestone,
		"message":   "Milestone updated successfully",
	})
}

// CompleteMilestone marks a milestone as completed.
func CompleteMilestone(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	milestone, err := workflowSvc.CompleteMilestone(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestone": milestone,
		"message":   "Milestone completed",
	})
}

// DeleteMilestone removes a milestone. Staff only.
func DeleteMilestone(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := milestoneSvc.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Milestone deleted successfully"})
}

// SweepOverdueMilestones persists the overdue status for all pending
// milestones past their due date. Admin only.
func SweepOverdueMilestones(c *gin.Context) {
	updated, err := workflowSvc.SweepOverdueMilestones()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"message": "Overdue sweep completed",
	})
}
