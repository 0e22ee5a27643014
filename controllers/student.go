package controllers

import (
	"net/http"
	"strings"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"
	"umi-faculty-api/services"
	"umi-faculty-api/utils"

	"github.com/gin-gonic/gin"
)

// GetStudents lists every student in the school.
func GetStudents(c *gin.Context) {
	var students []models.Student
	err := config.DB.Where("delete_at IS NULL").
		Order("student_id ASC").
		Find(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"students": students,
		"total":    len(students),
	})
}

// GetStudent returns one student with their proposals and books.
func GetStudent(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	var student models.Student
	err := config.DB.Preload("Proposals", "delete_at IS NULL").
		Preload("Books", "delete_at IS NULL").
		First(&student, "student_id = ? AND delete_at IS NULL", studentID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": student})
}

// CreateStudent registers a student.
func CreateStudent(c *gin.Context) {
	var req struct {
		FirstName      string `json:"firstName" binding:"required"`
		LastName       string `json:"lastName" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		RegistrationNo string `json:"registrationNo"`
		Program        string `json:"program"`
		AcademicYear   string `json:"academicYear"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	student := models.Student{
		FirstName:      utils.SanitizeInput(req.FirstName),
		LastName:       utils.SanitizeInput(req.LastName),
		Email:          strings.ToLower(utils.SanitizeInput(req.Email)),
		RegistrationNo: utils.SanitizeInput(req.RegistrationNo),
		Program:        utils.SanitizeInput(req.Program),
		AcademicYear:   utils.SanitizeInput(req.AcademicYear),
		CreateAt:       now,
		UpdateAt:       now,
	}
	if err := config.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Student created successfully",
		"student": student,
	})
}

// GetStudentStatuses returns the full status ledgers for everything the
// student is tracked on, proposals and books alike.
func GetStudentStatuses(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	var student models.Student
	err := config.DB.Preload("Proposals", "delete_at IS NULL").
		Preload("Books", "delete_at IS NULL").
		First(&student, "student_id = ? AND delete_at IS NULL", studentID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	statusSvc := services.NewStatusService(config.DB)
	type entityStatuses struct {
		EntityType string                `json:"entity_type"`
		EntityID   int                   `json:"entity_id"`
		Title      string                `json:"title"`
		Statuses   []models.StatusRecord `json:"statuses"`
	}

	ledgers := make([]entityStatuses, 0, len(student.Proposals)+len(student.Books))
	for _, proposal := range student.Proposals {
		history, err := statusSvc.History(models.EntityProposal, proposal.ProposalID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
			return
		}
		ledgers = append(ledgers, entityStatuses{models.EntityProposal, proposal.ProposalID, proposal.Title, history})
	}
	for _, book := range student.Books {
		history, err := statusSvc.History(models.EntityBook, book.BookID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
			return
		}
		ledgers = append(ledgers, entityStatuses{models.EntityBook, book.BookID, book.Title, history})
	}

	c.JSON(http.StatusOK, gin.H{"statuses": ledgers})
}
