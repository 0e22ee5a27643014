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

// GetBooks lists every dissertation book with its current status.
func GetBooks(c *gin.Context) {
	var books []models.Book
	err := config.DB.Preload("Student").
		Preload("Statuses", "is_current = ?", true).
		Preload("Statuses.Definition").
		Where("delete_at IS NULL").
		Order("book_id DESC").
		Find(&books).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"total": len(books),
	})
}

// GetBook returns one book with its full ledger and examiner assignments.
func GetBook(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var book models.Book
	err := config.DB.Preload("Student").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC, status_id ASC") }).
		Preload("Statuses.Definition").
		First(&book, "book_id = ? AND delete_at IS NULL", bookID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	examiners, err := services.NewAssignmentService(config.DB).List(models.EntityBook, bookID, models.RoleExaminer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch examiners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"book":      book,
		"examiners": examiners,
	})
}

// GetStudentBooks lists one student's books.
func GetStudentBooks(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	var books []models.Book
	err := config.DB.Preload("Statuses", "is_current = ?", true).
		Preload("Statuses.Definition").
		Where("student_id = ? AND delete_at IS NULL", studentID).
		Order("book_id DESC").
		Find(&books).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"total": len(books),
	})
}

// SubmitBook creates a dissertation book for a student and opens its status
// ledger.
func SubmitBook(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	var req struct {
		Title          string     `json:"title" binding:"required"`
		SubmissionDate *time.Time `json:"submissionDate"`
	}
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

	book := models.Book{
		StudentID:      studentID,
		Title:          utils.SanitizeInput(req.Title),
		SubmissionDate: submittedAt,
		SubmittedBy:    userID,
		CreateAt:       now,
		UpdateAt:       now,
	}

	workflow := services.NewWorkflowService(config.DB)
	var status *models.StatusRecord

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&book).Error; err != nil {
			return err
		}
		var err error
		status, err = workflow.MarkSubmitted(tx, models.EntityBook, book.BookID, submittedAt, userID)
		return err
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityBook, book.BookID, status)

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Book submitted successfully",
		"book":           book,
		"current_status": status,
	})
}
