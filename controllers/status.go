package controllers

import (
	"net/http"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

// GetStatusDefinitions returns the workflow status reference data (names,
// colors, expected durations) for proposals and books.
func GetStatusDefinitions(c *gin.Context) {
	svc := services.NewStatusService(config.DB)

	proposalDefs, err := svc.Definitions(models.EntityProposal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status definitions"})
		return
	}
	bookDefs, err := svc.Definitions(models.EntityBook)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status definitions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal_statuses": proposalDefs,
		"book_statuses":     bookDefs,
	})
}
