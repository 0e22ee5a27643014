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

type ExaminerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Institution string `json:"institution"`
	IsInternal  bool   `json:"isInternal"`
}

// CreateExaminer registers an examiner contact. An existing person with the
// same email is granted the examiner role instead of being duplicated.
func CreateExaminer(c *gin.Context) {
	createPersonWithRole(c, models.RoleExaminer, "examiner")
}

// GetExaminers lists every person holding the examiner role.
func GetExaminers(c *gin.Context) {
	listPersonsByRole(c, models.RoleExaminer, "examiners")
}

// GetExaminer returns one examiner.
func GetExaminer(c *gin.Context) {
	examinerID, ok := paramID(c, "examinerId")
	if !ok {
		return
	}

	var person models.Person
	err := config.DB.Preload("Roles").
		First(&person, "person_id = ? AND delete_at IS NULL", examinerID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Examiner not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"examiner": person})
}

// UpdateExaminer updates an examiner's contact details.
func UpdateExaminer(c *gin.Context) {
	examinerID, ok := paramID(c, "examinerId")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Institution string `json:"institution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{"update_at": time.Now()}
	if req.Name != "" {
		updates["name"] = utils.SanitizeInput(req.Name)
	}
	if req.Institution != "" {
		updates["institution"] = utils.SanitizeInput(req.Institution)
	}

	result := config.DB.Model(&models.Person{}).
		Where("person_id = ? AND delete_at IS NULL", examinerID).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update examiner"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Examiner not found"})
		return
	}

	var person models.Person
	config.DB.Preload("Roles").First(&person, "person_id = ?", examinerID)
	c.JSON(http.StatusOK, gin.H{"message": "Examiner updated successfully", "examiner": person})
}

// DeleteExaminer soft-deletes an examiner contact. Existing assignments and
// their marks stay in the ledger.
func DeleteExaminer(c *gin.Context) {
	examinerID, ok := paramID(c, "examinerId")
	if !ok {
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.Person{}).
		Where("person_id = ? AND delete_at IS NULL", examinerID).
		Updates(map[string]any{"delete_at": now, "update_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete examiner"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Examiner not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Examiner deleted successfully"})
}

type AssignExaminersRequest struct {
	ExaminerIDs    []int      `json:"examinerIds"`
	StaffMemberIDs []int      `json:"staffMemberIds"`
	AssignmentDate *time.Time `json:"assignmentDate"`
}

// AssignExaminers assigns existing examiners (or staff members, who get the
// examiner role granted) to a book. The first batch on a submitted book moves
// it to under examination.
func AssignExaminers(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var req AssignExaminersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := append(append([]int{}, req.ExaminerIDs...), req.StaffMemberIDs...)
	people := make([]services.PersonInput, 0, len(ids))
	for _, id := range ids {
		people = append(people, services.PersonInput{ID: id})
	}

	assignedAt := time.Now()
	if req.AssignmentDate != nil {
		assignedAt = *req.AssignmentDate
	}

	userID := c.GetInt("userID")
	svc := services.NewAssignmentService(config.DB)
	results, status, err := svc.AssignBatch(models.EntityBook, bookID, models.RoleExaminer, people, assignedAt, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyStatusChange(userID, models.EntityBook, bookID, status)

	assignments := make([]*models.Assignment, 0, len(results))
	for _, res := range results {
		assignments = append(assignments, res.Assignment)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Examiners assigned successfully",
		"assignments":    assignments,
		"current_status": currentStatus(models.EntityBook, bookID, status),
	})
}

// createPersonWithRole registers a person and grants one role, reusing the
// identity when the email is already on file.
func createPersonWithRole(c *gin.Context, role, key string) {
	var req ExaminerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(utils.SanitizeInput(req.Email))
	if !utils.ValidateEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	now := time.Now()
	person := models.Person{
		Name:        utils.SanitizeInput(req.Name),
		Email:       email,
		Institution: utils.SanitizeInput(req.Institution),
		IsInternal:  req.IsInternal,
		CreateAt:    now,
		UpdateAt:    now,
	}
	if err := config.DB.Where("email = ?", email).FirstOrCreate(&person).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create " + key})
		return
	}

	userID := c.GetInt("userID")
	grant := models.PersonRole{PersonID: person.PersonID, Role: role, GrantedBy: userID, CreateAt: now}
	if err := config.DB.Where("person_id = ? AND role = ?", person.PersonID, role).
		FirstOrCreate(&grant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create " + key})
		return
	}

	config.DB.Preload("Roles").First(&person, "person_id = ?", person.PersonID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Created " + key + " successfully",
		key:       person,
	})
}
