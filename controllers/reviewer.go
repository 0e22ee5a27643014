package controllers

import (
	"net/http"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

// GetReviewers lists every person holding the reviewer role.
func GetReviewers(c *gin.Context) {
	listPersonsByRole(c, models.RoleReviewer, "reviewers")
}

// AddReviewers assigns one or more reviewers to a proposal. Re-adding an
// already assigned reviewer is coalesced, not an error; the first reviewer on
// a submitted proposal moves it to under review.
func AddReviewers(c *gin.Context) {
	assignToProposal(c, models.RoleReviewer, "reviewers")
}

// DeleteReviewer unassigns a reviewer from a proposal. Any verdict they had
// recorded goes with the assignment.
func DeleteReviewer(c *gin.Context) {
	unassignFromProposal(c, models.RoleReviewer, "reviewerId")
}

// GetPanelists lists every person holding the panelist role.
func GetPanelists(c *gin.Context) {
	listPersonsByRole(c, models.RolePanelist, "panelists")
}

// AddPanelists assigns one or more panelists to a proposal.
func AddPanelists(c *gin.Context) {
	assignToProposal(c, models.RolePanelist, "panelists")
}

// DeletePanelist unassigns a panelist from a proposal.
func DeletePanelist(c *gin.Context) {
	unassignFromProposal(c, models.RolePanelist, "panelistId")
}

func listPersonsByRole(c *gin.Context, role, key string) {
	var persons []models.Person
	err := config.DB.Preload("Roles").
		Joins("JOIN person_roles ON person_roles.person_id = persons.person_id AND person_roles.role = ?", role).
		Where("persons.delete_at IS NULL").
		Order("persons.person_id ASC").
		Find(&persons).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + key})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		key:     persons,
		"total": len(persons),
	})
}

func assignToProposal(c *gin.Context, role, key string) {
	proposalID, ok := paramID(c, "proposalId")
	if !ok {
		return
	}

	var body map[string][]services.PersonInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	people := body[key]

	userID := c.GetInt("userID")
	svc := services.NewAssignmentService(config.DB)
	results, status, err := svc.AssignBatch(models.EntityProposal, proposalID, role, people, time.Now(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, proposalID, status)

	assignments := make([]*models.Assignment, 0, len(results))
	created := 0
	for _, res := range results {
		assignments = append(assignments, res.Assignment)
		if res.Created {
			created++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Assigned successfully",
		"assignments":    assignments,
		"created":        created,
		"current_status": currentStatus(models.EntityProposal, proposalID, status),
	})
}

func unassignFromProposal(c *gin.Context, role, personParam string) {
	proposalID, ok := paramID(c, "proposalId")
	if !ok {
		return
	}
	personID, ok := paramID(c, personParam)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewAssignmentService(config.DB)
	status, err := svc.Unassign(models.EntityProposal, proposalID, personID, role, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, proposalID, status)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Unassigned successfully",
		"current_status": currentStatus(models.EntityProposal, proposalID, status),
	})
}
