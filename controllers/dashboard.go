package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
)

// GetAnalytics returns the admin dashboard snapshot: entity counts broken
// down by status, submission totals, the average evaluation score and how
// many milestones are overdue right now.
func GetAnalytics(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	report, err := analyticsSvc.ComputeSnapshot(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": report})
}
