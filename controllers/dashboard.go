package controllers

import (
	"net/http"

	"umi-faculty-api/config"
	"umi-faculty-api/models"

	"github.com/gin-gonic/gin"
)

type statusCount struct {
	StatusName string `json:"status_name"`
	Color      string `json:"color"`
	Count      int64  `json:"count"`
}

func countByCurrentStatus(entityType string) ([]statusCount, error) {
	var counts []statusCount
	err := config.DB.Model(&models.StatusRecord{}).
		Select("status_definitions.status_name AS status_name, status_definitions.color AS color, COUNT(*) AS count").
		Joins("JOIN status_definitions ON status_definitions.definition_id = status_records.definition_id").
		Where("status_records.entity_type = ? AND status_records.is_current = ?", entityType, true).
		Group("status_definitions.status_name, status_definitions.color").
		Scan(&counts).Error
	return counts, err
}

// GetDashboardStats returns the headline counts the faculty dashboard shows:
// totals plus proposals and books grouped by current status.
func GetDashboardStats(c *gin.Context) {
	var studentCount, proposalCount, bookCount int64
	if err := config.DB.Model(&models.Student{}).Where("delete_at IS NULL").Count(&studentCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := config.DB.Model(&models.Proposal{}).Where("delete_at IS NULL").Count(&proposalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := config.DB.Model(&models.Book{}).Where("delete_at IS NULL").Count(&bookCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	proposalStatuses, err := countByCurrentStatus(models.EntityProposal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	bookStatuses, err := countByCurrentStatus(models.EntityBook)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"students":            studentCount,
		"proposals":           proposalCount,
		"books":               bookCount,
		"proposals_by_status": proposalStatuses,
		"books_by_status":     bookStatuses,
	})
}
