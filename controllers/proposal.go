package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetProposals returns proposals visible to the acting user.
func GetProposals(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	proposals, err := proposalService.List(actor, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// GetProposal returns a single proposal by ID.
func GetProposal(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	proposal, err := proposalService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// CreateProposal submits a new project proposal. Students only. Accepts
// multipart form data with an optional proposal document.
func CreateProposal(c *gin.Context) {
	title := utils.SanitizeInput(c.PostForm("title"))
	description := utils.SanitizeInput(c.PostForm("description"))

	documentPath := ""
	if file, err := c.FormFile("document"); err == nil {
		path, err := saveUpload(c, file, "proposals")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		documentPath = path
	}

	actor := middleware.CurrentUser(c)
	proposal, err := proposalService.Create(actor, services.ProposalInput{
		Title:        title,
		Description:  description,
		DocumentPath: documentPath,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"proposal": proposal,
		"message":  "Proposal submitted successfully",
	})
}

// UpdateProposal edits proposal fields. Status never changes here.
func UpdateProposal(c *gin.Context) {
	type UpdateProposalRequest struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		SupervisorID *uint   `json:"supervisor_id"`
		Feedback     *string `json:"feedback"`
	}

	var req UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	proposal, err := proposalService.Update(actor, id, services.ProposalUpdate{
		Title:        req.Title,
		Description:  req.Description,
		SupervisorID: req.SupervisorID,
		Feedback:     req.Feedback,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"message":  "Proposal updated successfully",
	})
}

// DeleteProposal removes a proposal. Approved proposals cannot be deleted.
func DeleteProposal(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := proposalService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Proposal deleted successfully"})
}

// ApproveProposal moves a pending proposal to approved. Staff only.
func ApproveProposal(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	proposal, err := workflowSvc.ApproveProposal(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"message":  "Proposal approved",
	})
}

// RejectProposal moves a pending proposal to rejected with feedback. Staff only.
func RejectProposal(c *gin.Context) {
	type RejectRequest struct {
		Feedback string `json:"feedback" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	proposal, err := workflowSvc.RejectProposal(actor, id, utils.SanitizeInput(req.Feedback))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"message":  "Proposal rejected",
	})
}
