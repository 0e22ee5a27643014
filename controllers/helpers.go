package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps a workflow error to its HTTP status. Guard
// failures carry the current status so the portal can explain the conflict
// without a second read.
func respondServiceError(c *gin.Context, err error) {
	var werr *services.WorkflowError
	if errors.As(err, &werr) {
		status := http.StatusInternalServerError
		switch werr.Kind {
		case services.KindNotFound:
			status = http.StatusNotFound
		case services.KindValidation, services.KindInvalidVerdict, services.KindInvalidGrade:
			status = http.StatusBadRequest
		case services.KindInvalidTransition, services.KindAlreadyDecided, services.KindConflict:
			status = http.StatusConflict
		}

		payload := gin.H{"error": werr.Message, "kind": werr.Kind}
		if werr.CurrentStatus != "" {
			payload["current_status"] = werr.CurrentStatus
		}
		c.JSON(status, payload)
		return
	}

	log.Printf("Error: unhandled service failure: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// currentStatus resolves the status to embed in a mutating response: the
// fresh transition record when one fired, otherwise the stored current one.
func currentStatus(entityType string, entityID int, changed *models.StatusRecord) *models.StatusRecord {
	if changed != nil {
		return changed
	}
	record, err := services.NewStatusService(config.DB).Current(entityType, entityID)
	if err != nil {
		log.Printf("Warning: failed to load current status for %s %d: %v", entityType, entityID, err)
		return nil
	}
	return record
}

// notifyStatusChange records the in-app notification for a transition.
func notifyStatusChange(actor int, entityType string, entityID int, record *models.StatusRecord) {
	if record == nil {
		return
	}
	svc := services.NewNotificationService(config.DB)
	if err := svc.StatusChanged(actor, entityType, entityID, record); err != nil {
		log.Printf("Warning: failed to record notification: %v", err)
	}
}
