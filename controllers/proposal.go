package controllers

import (
	"net/http"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"
	"umi-faculty-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubmitProposalRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	ResearchArea   string     `json:"researchArea"`
	SubmissionDate *time.Time `json:"submissionDate"`
}

// SubmitProposal creates a proposal for a student and opens its status
// ledger with "proposal submitted".
func SubmitProposal(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var student models.Student
	if err := config.DB.First(&student, "student_id = ? AND delete_at IS NULL", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	userID := c.GetInt("userID")
	now := time.Now()
	submittedAt := now
	if req.SubmissionDate != nil {
		submittedAt = *req.SubmissionDate
	}

	proposal := models.Proposal{
		StudentID:      studentID,
		Title:          utils.SanitizeInput(req.Title),
		Description:    utils.SanitizeInput(req.Description),
		ResearchArea:   utils.SanitizeInput(req.ResearchArea),
		SubmissionDate: submittedAt,
		SubmittedBy:    userID,
		CreateAt:       now,
		UpdateAt:       now,
	}

	workflow := services.NewWorkflowService(config.DB)
	var status *models.StatusRecord

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}
		var err error
		status, err = workflow.MarkSubmitted(tx, models.EntityProposal, proposal.ProposalID, submittedAt, userID)
		return err
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, proposal.ProposalID, status)

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Proposal submitted successfully",
		"proposal":       proposal,
		"current_status": status,
	})
}

// GetProposals lists every proposal in the school with its current status.
func GetProposals(c *gin.Context) {
	var proposals []models.Proposal
	err := config.DB.Preload("Student").
		Preload("Statuses", "is_current = ?", true).
		Preload("Statuses.Definition").
		Where("delete_at IS NULL").
		Order("proposal_id DESC").
		Find(&proposals).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch proposals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// GetStudentProposals lists one student's proposals.
func GetStudentProposals(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var proposals []models.Proposal
	err := config.DB.Preload("Statuses", "is_current = ?", true).
		Preload("Statuses.Definition").
		Where("student_id = ? AND delete_at IS NULL", studentID).
		Order("proposal_id DESC").
		Find(&proposals).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch proposals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// GetProposal returns one proposal with its full ledger, defense and graders.
func GetProposal(c *gin.Context) {
	proposalID, ok := paramID(c, "proposalId")
	if !ok {
		return
	}

	var proposal models.Proposal
	err := config.DB.Preload("Student").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC, status_id ASC") }).
		Preload("Statuses.Definition").
		Preload("Defense").
		Preload("Defense.Participants").
		First(&proposal, "proposal_id = ? AND delete_at IS NULL", proposalID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	assignmentSvc := services.NewAssignmentService(config.DB)
	reviewers, err := assignmentSvc.List(models.EntityProposal, proposalID, models.RoleReviewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviewers"})
		return
	}
	panelists, err := assignmentSvc.List(models.EntityProposal, proposalID, models.RolePanelist)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch panelists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal":  proposal,
		"reviewers": reviewers,
		"panelists": panelists,
	})
}

func updateProposalDate(c *gin.Context, column string, value time.Time) {
	proposalID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND delete_at IS NULL", proposalID).
		Updates(map[string]any{column: value, "update_at": time.Now()})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update proposal"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	var proposal models.Proposal
	if err := config.DB.First(&proposal, "proposal_id = ?", proposalID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch proposal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Proposal updated successfully",
		"proposal": proposal,
	})
}

// AddDefenseDate stamps the advisory defense date on a proposal. Actual
// scheduling goes through the defense endpoint.
func AddDefenseDate(c *gin.Context) {
	var req struct {
		DefenseDate time.Time `json:"defenseDate" binding:"required"`
		Type        string    `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updateProposalDate(c, "defense_date", req.DefenseDate)
}

// AddComplianceReportDate stamps the compliance report date.
func AddComplianceReportDate(c *gin.Context) {
	var req struct {
		ComplianceReportDate time.Time `json:"complianceReportDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updateProposalDate(c, "compliance_report_date", req.ComplianceReportDate)
}

// UpdateFieldLetterDate stamps the field letter date. Generating the letter
// itself is handled by the documents system, not this API.
func UpdateFieldLetterDate(c *gin.Context) {
	var req struct {
		FieldLetterDate time.Time `json:"fieldLetterDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updateProposalDate(c, "field_letter_date", req.FieldLetterDate)
}
