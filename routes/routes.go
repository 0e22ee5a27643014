package routes

import (
	"umi-faculty-api/controllers"
	"umi-faculty-api/middleware"
	"umi-faculty-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		faculty := v1.Group("/faculty")

		// Public routes
		faculty.POST("/login", controllers.Login)
		faculty.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "UMI Faculty API is running",
			})
		})

		// Protected routes (require authentication)
		protected := faculty.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reference data
			protected.GET("/statuses", controllers.GetStatusDefinitions)

			// Students
			protected.GET("/students", controllers.GetStudents)
			protected.POST("/students", controllers.CreateStudent)
			protected.GET("/students/:studentId", controllers.GetStudent)
			protected.GET("/students/:studentId/statuses", controllers.GetStudentStatuses)
			protected.GET("/students/:studentId/books", controllers.GetStudentBooks)
			protected.POST("/students/:studentId/books", controllers.SubmitBook)

			// Proposals. The :id segment is the student id on submission and
			// listing, the proposal id on the nested routes.
			protected.GET("/proposals", controllers.GetProposals)
			protected.POST("/proposals/:id", controllers.SubmitProposal)
			protected.GET("/proposals/:id", controllers.GetStudentProposals)
			protected.GET("/proposal/:proposalId", controllers.GetProposal)
			protected.POST("/proposals/:id/defenses", controllers.ScheduleDefense)
			protected.POST("/proposals/:id/defense-date", controllers.AddDefenseDate)
			protected.POST("/proposals/:id/compliance-report-date", controllers.AddComplianceReportDate)
			protected.PUT("/update-field-letter-date/:id", controllers.UpdateFieldLetterDate)

			// Defenses
			protected.PUT("/defenses/:defenseId", controllers.RecordDefenseVerdict)

			// Reviewers
			protected.GET("/reviewers", controllers.GetReviewers)
			protected.POST("/reviewers/:proposalId", controllers.AddReviewers)
			protected.POST("/reviewer-marks/:proposalId/:reviewerId", controllers.AddReviewerMark)

			// Panelists
			protected.GET("/panelists", controllers.GetPanelists)
			protected.POST("/panelists/:proposalId", controllers.AddPanelists)
			protected.POST("/panelist-marks/:proposalId/:panelistId", controllers.AddPanelistMark)

			// Examiners
			protected.POST("/examiners", controllers.CreateExaminer)
			protected.GET("/examiners", controllers.GetExaminers)
			protected.GET("/examiners/:examinerId", controllers.GetExaminer)
			protected.PUT("/examiners/:examinerId", controllers.UpdateExaminer)
			protected.PUT("/internal-examiner-mark/:assignmentId", controllers.UpdateInternalExaminerMark)

			// Books
			protected.GET("/books", controllers.GetBooks)
			protected.GET("/books/:bookId", controllers.GetBook)
			protected.POST("/books/:bookId/examiners", controllers.AssignExaminers)

			// Staff and defense officers
			protected.GET("/staff", controllers.GetStaffMembers)
			protected.POST("/staff", controllers.CreateStaffMember)
			protected.POST("/chairperson", controllers.CreateChairperson)
			protected.POST("/minutes-secretary", controllers.CreateMinutesSecretary)

			// Destructive operations and role grants need an admin or
			// coordinator account on top of a valid token.
			restricted := protected.Group("")
			restricted.Use(middleware.RequireRole(models.RoleIDAdmin, models.RoleIDCoordinator))
			{
				restricted.DELETE("/reviewers/:proposalId/:reviewerId", controllers.DeleteReviewer)
				restricted.DELETE("/panelists/:proposalId/:panelistId", controllers.DeletePanelist)
				restricted.DELETE("/examiners/:examinerId", controllers.DeleteExaminer)
				restricted.POST("/staff/:staffId/convert", controllers.ConvertStaffMember)
			}

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:notificationId/read", controllers.MarkNotificationRead)

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
