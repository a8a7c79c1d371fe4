package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetSubmissions returns submissions visible to the acting user.
func GetSubmissions(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	submissions, err := submissionSvc.List(actor, queryUint(c, "project_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns a single submission by ID.
func GetSubmission(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	submission, err := submissionSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// CreateSubmission uploads a deliverable for a project. Students only; the
// student must belong to the project.
func CreateSubmission(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	title := utils.SanitizeInput(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	path, err := saveUpload(c, file, "submissions")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	submission, err := submissionSvc.Create(actor, services.SubmissionInput{
		ProjectID: uint(projectID),
		Title:     title,
		FilePath:  path,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission": submission,
		"message":    "Submission created successfully",
	})
}

// GetFeedbackThread returns the feedback thread for a submission.
func GetFeedbackThread(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	thread, err := submissionSvc.GetThread(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	messages, err := submissionSvc.ListFeedbackMessages(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread":   thread,
		"messages": messages,
		"total":    len(messages),
	})
}

// PostFeedbackMessage appends a message to a submission's feedback thread.
// Only the submitting student and the project supervisor may post.
func PostFeedbackMessage(c *gin.Context) {
	type MessageRequest struct {
		Message string `json:"message" binding:"required"`
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	message, err := submissionSvc.AddFeedbackMessage(actor, id, utils.SanitizeInput(req.Message))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"feedback": message,
		"message":  "Feedback posted successfully",
	})
}
