package controllers

import (
	"fmt"
	"net/http"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

type ScheduleDefenseRequest struct {
	ScheduledDate      time.Time `json:"scheduledDate" binding:"required"`
	Location           string    `json:"location" binding:"required"`
	ChairpersonID      int       `json:"chairpersonId" binding:"required"`
	MinutesSecretaryID int       `json:"minutesSecretaryId" binding:"required"`
	PanelistIDs        []int     `json:"panelistIds" binding:"required"`
	ReviewerIDs        []int     `json:"reviewerIds" binding:"required"`
}

// ScheduleDefense puts a proposal defense on the calendar, or reschedules the
// pending one. The proposal must have passed review and carry at least one
// assigned panelist and reviewer.
func ScheduleDefense(c *gin.Context) {
	proposalID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ScheduleDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignmentSvc := services.NewAssignmentService(config.DB)
	panelists, err := assignmentSvc.List(models.EntityProposal, proposalID, models.RolePanelist)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch panelists"})
		return
	}
	reviewers, err := assignmentSvc.List(models.EntityProposal, proposalID, models.RoleReviewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviewers"})
		return
	}
	if len(panelists) == 0 || len(reviewers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Proposal needs at least one assigned panelist and one assigned reviewer before scheduling a defense",
			"kind":  services.KindValidation,
		})
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewDefenseService(config.DB)
	outcome, err := svc.Schedule(proposalID, services.ScheduleInput{
		ScheduledDate:      req.ScheduledDate,
		Location:           req.Location,
		ChairpersonID:      req.ChairpersonID,
		MinutesSecretaryID: req.MinutesSecretaryID,
		PanelistIDs:        req.PanelistIDs,
		ReviewerIDs:        req.ReviewerIDs,
		ScheduledBy:        userID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, proposalID, outcome.Status)
	notifyDefenseRoster(outcome.Defense)

	message := "Defense scheduled successfully"
	if outcome.Updated {
		message = "Defense rescheduled successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"defense":        outcome.Defense,
		"date_in_past":   outcome.DateInPast,
		"current_status": currentStatus(models.EntityProposal, proposalID, outcome.Status),
	})
}

// RecordDefenseVerdict sets the defense verdict once and moves the proposal
// to defended passed/failed.
func RecordDefenseVerdict(c *gin.Context) {
	defenseID, ok := paramID(c, "defenseId")
	if !ok {
		return
	}

	var req struct {
		Verdict  string `json:"verdict" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewDefenseService(config.DB)
	defense, status, err := svc.RecordVerdict(defenseID, req.Verdict, req.Comments, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, defense.ProposalID, status)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Defense verdict recorded",
		"defense":        defense,
		"current_status": currentStatus(models.EntityProposal, defense.ProposalID, status),
	})
}

// notifyDefenseRoster emails the scheduled roster, best effort.
func notifyDefenseRoster(defense *models.Defense) {
	if defense == nil || len(defense.Participants) == 0 {
		return
	}

	recipients := make([]string, 0, len(defense.Participants))
	for _, p := range defense.Participants {
		if p.Email != "" {
			recipients = append(recipients, p.Email)
		}
	}

	subject := "Proposal defense scheduled"
	body := fmt.Sprintf("<p>A proposal defense has been scheduled on %s at %s.</p>",
		defense.ScheduledDate.Format("02 Jan 2006 15:04"), defense.Location)
	services.NewNotificationService(config.DB).Email(recipients, subject, body)
}
