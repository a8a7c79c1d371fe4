package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/models"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetRubrics returns all evaluation rubrics.
func GetRubrics(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	rubrics, err := evaluationSvc.ListRubrics(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rubrics": rubrics,
		"total":   len(rubrics),
	})
}

// GetRubric returns a single rubric by ID.
func GetRubric(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	rubric, err := evaluationSvc.GetRubric(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rubric": rubric})
}

// CreateRubric defines a new evaluation rubric. Admin only. The maximum
// score is derived from the criteria.
func CreateRubric(c *gin.Context) {
	type CreateRubricRequest struct {
		Name     string                   `json:"name" binding:"required"`
		Criteria []models.RubricCriterion `json:"criteria" binding:"required"`
	}

	var req CreateRubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	rubric, err := evaluationSvc.CreateRubric(actor, services.RubricInput{
		Name:     utils.SanitizeInput(req.Name),
		Criteria: req.Criteria,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"rubric":  rubric,
		"message": "Rubric created successfully",
	})
}

// GetEvaluations returns evaluations visible to the acting user.
func GetEvaluations(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	evaluations, err := evaluationSvc.List(actor, queryUint(c, "project_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"evaluations": evaluations,
		"total":       len(evaluations),
	})
}

// GetEvaluation returns a single evaluation by ID.
func GetEvaluation(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	evaluation, err := evaluationSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"evaluation": evaluation})
}

// CreateEvaluation records a project evaluation with the acting user as
// evaluator. Each evaluator may grade a project once.
func CreateEvaluation(c *gin.Context) {
	type CreateEvaluationRequest struct {
		ProjectID  uint                    `json:"project_id" binding:"required"`
		RubricID   *uint                   `json:"rubric_id"`
		Scores     []models.CriterionScore `json:"scores" binding:"required"`
		TotalScore *float64                `json:"total_score"`
		Comments   string                  `json:"comments"`
	}

	var req CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	evaluation, err := evaluationSvc.Create(actor, services.EvaluationInput{
		ProjectID:  req.ProjectID,
		RubricID:   req.RubricID,
		Scores:     req.Scores,
		TotalScore: req.TotalScore,
		Comments:   utils.SanitizeInput(req.Comments),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"evaluation": evaluation,
		"message":    "Evaluation recorded successfully",
	})
}
