package controllers

import (
	"net/http"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"

	"github.com/gin-gonic/gin"
)

// GetStaffMembers lists every person holding the staff role.
func GetStaffMembers(c *gin.Context) {
	listPersonsByRole(c, models.RoleStaff, "staff")
}

// CreateStaffMember registers an internal staff contact.
func CreateStaffMember(c *gin.Context) {
	createPersonWithRole(c, models.RoleStaff, "staff")
}

// CreateChairperson registers a chairperson contact for defense sittings.
func CreateChairperson(c *gin.Context) {
	createPersonWithRole(c, models.RoleChairperson, "chairperson")
}

// CreateMinutesSecretary registers a minutes secretary contact.
func CreateMinutesSecretary(c *gin.Context) {
	createPersonWithRole(c, models.RoleMinutesSecretary, "minutes_secretary")
}

// ConvertStaffMember grants a reviewer/panelist/examiner role to an existing
// staff member. One identity, one more capability; nothing is copied.
func ConvertStaffMember(c *gin.Context) {
	staffID, ok := paramID(c, "staffId")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Role {
	case models.RoleReviewer, models.RolePanelist, models.RoleExaminer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be reviewer, panelist or examiner"})
		return
	}

	var person models.Person
	err := config.DB.Preload("Roles").
		First(&person, "person_id = ? AND delete_at IS NULL", staffID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
		return
	}

	userID := c.GetInt("userID")
	grant := models.PersonRole{
		PersonID:  person.PersonID,
		Role:      req.Role,
		GrantedBy: userID,
		CreateAt:  time.Now(),
	}
	if err := config.DB.Where("person_id = ? AND role = ?", person.PersonID, req.Role).
		FirstOrCreate(&grant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert staff member"})
		return
	}

	config.DB.Preload("Roles").First(&person, "person_id = ?", person.PersonID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Staff member converted successfully",
		"person":  person,
	})
}
