package controllers

import (
	"net/http"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"

	"github.com/gin-gonic/gin"
)

// AddReviewerMark records (or updates) a reviewer's verdict on a proposal.
// When the last reviewer submits, the proposal moves to passed/failed-graded
// and the response carries the new status.
func AddReviewerMark(c *gin.Context) {
	proposalID, ok := paramID(c, "proposalId")
	if !ok {
		return
	}
	reviewerID, ok := paramID(c, "reviewerId")
	if !ok {
		return
	}

	var req struct {
		Verdict  string `json:"verdict" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewGradingService(config.DB)
	mark, status, err := svc.RecordReviewerVerdict(proposalID, reviewerID, req.Verdict, req.Feedback, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityProposal, proposalID, status)

	var proposal models.Proposal
	if err := config.DB.First(&proposal, "proposal_id = ?", proposalID).Error; err == nil && proposal.ReviewOutcome != nil {
		c.JSON(http.StatusOK, gin.H{
			"message":        "Reviewer mark recorded",
			"mark":           mark,
			"review_outcome": proposal.ReviewOutcome,
			"current_status": currentStatus(models.EntityProposal, proposalID, status),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Reviewer mark recorded",
		"mark":           mark,
		"current_status": currentStatus(models.EntityProposal, proposalID, status),
	})
}

// AddPanelistMark records (or updates) a panelist's numeric mark on a
// proposal. Panelist marks never move the proposal status; the running
// aggregate is returned instead.
func AddPanelistMark(c *gin.Context) {
	proposalID, ok := paramID(c, "proposalId")
	if !ok {
		return
	}
	panelistID, ok := paramID(c, "panelistId")
	if !ok {
		return
	}

	var req struct {
		Grade    *float64 `json:"grade" binding:"required"`
		Feedback string   `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewGradingService(config.DB)
	mark, aggregate, err := svc.RecordPanelistMark(proposalID, panelistID, *req.Grade, req.Feedback, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Panelist mark recorded",
		"mark":           mark,
		"aggregate":      aggregate,
		"current_status": currentStatus(models.EntityProposal, proposalID, nil),
	})
}

// UpdateInternalExaminerMark records (or updates) an examiner's mark on a
// book, addressed by assignment. Completing the examiner round moves the book
// to passed/failed examination.
func UpdateInternalExaminerMark(c *gin.Context) {
	assignmentID, ok := paramID(c, "assignmentId")
	if !ok {
		return
	}

	var req struct {
		Mark     *float64 `json:"mark" binding:"required"`
		Comments string   `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	svc := services.NewGradingService(config.DB)
	mark, status, err := svc.RecordExaminerMark(assignmentID, *req.Mark, req.Comments, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, mark.EntityType, mark.EntityID, status)

	var book models.Book
	payload := gin.H{
		"message":        "Examiner mark recorded",
		"mark":           mark,
		"current_status": currentStatus(models.EntityBook, mark.EntityID, status),
	}
	if err := config.DB.First(&book, "book_id = ?", mark.EntityID).Error; err == nil {
		payload["examination_score"] = book.ExaminationScore
		payload["examination_outcome"] = book.ExaminationOutcome
	}

	c.JSON(http.StatusOK, payload)
}
