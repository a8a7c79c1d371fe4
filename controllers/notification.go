package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/utils"
)

// GetNotifications returns the acting user's notifications, newest first.
// Pass ?unread=true to see only unread ones.
func GetNotifications(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var unread *bool
	switch c.Query("unread") {
	case "true":
		v := true
		unread = &v
	case "false":
		v := false
		unread = &v
	}

	notifications, err := notificationSvc.List(actor, unread)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetNotification returns a single notification by ID.
func GetNotification(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	notification, err := notificationSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// CreateNotification sends a notification to a user.
func CreateNotification(c *gin.Context) {
	type CreateNotificationRequest struct {
		RecipientID uint    `json:"recipient_id" binding:"required"`
		Message     string  `json:"message" binding:"required"`
		Type        string  `json:"type"`
		Link        *string `json:"link"`
	}

	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	notification, err := notificationSvc.Notify(actor, req.RecipientID, utils.SanitizeInput(req.Message), req.Type, req.Link)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": notification,
		"message":      "Notification sent",
	})
}

// MarkNotificationRead flips the read flag on a notification.
func MarkNotificationRead(c *gin.Context) {
	type MarkReadRequest struct {
		Read *bool `json:"read"`
	}

	read := true
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Read != nil {
		read = *req.Read
	}

	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	notification, err := notificationSvc.MarkRead(actor, id, read)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllNotificationsRead marks every unread notification of the acting
// user as read.
func MarkAllNotificationsRead(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	updated, err := notificationSvc.MarkAllRead(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"message": "All notifications marked as read",
	})
}

// GetUnreadNotificationCount returns the acting user's unread count.
func GetUnreadNotificationCount(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	count, err := notificationSvc.UnreadCount(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
