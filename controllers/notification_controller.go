package controllers

import (
	"net/http"
	"strconv"

	"umi-faculty-api/config"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first.
// ?unread=true narrows to unread ones.
func GetNotifications(c *gin.Context) {
	userID := c.GetInt("userID")
	unreadOnly := c.Query("unread") == "true"

	svc := services.NewNotificationService(config.DB)
	notifications, err := svc.List(userID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// MarkNotificationRead flags one of the caller's notifications as read.
func MarkNotificationRead(c *gin.Context) {
	userID := c.GetInt("userID")
	notificationID, err := strconv.ParseUint(c.Param("notificationId"), 10, 32)
	if err != nil || notificationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notificationId"})
		return
	}

	svc := services.NewNotificationService(config.DB)
	if err := svc.MarkRead(userID, uint(notificationID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
