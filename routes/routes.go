package routes

import (
	"fund-ledger-api/controllers"
	"fund-ledger-api/middleware"
	"fund-ledger-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Fund Ledger API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", controllers.GetProfile)

			// Departments
			departments := protected.Group("/departments")
			{
				departments.GET("", controllers.GetDepartments)
				departments.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateDepartment)
				departments.PUT("/:id/deactivate", middleware.RequireRole(models.RoleAdmin), controllers.DeactivateDepartment)
			}

			// Quotas
			quotas := protected.Group("/quotas")
			{
				quotas.GET("", controllers.GetQuotas)
				quotas.GET("/:id", controllers.GetQuotaDetails)
				quotas.POST("", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.CreateQuota)
				quotas.POST("/:id/adjust-budget", middleware.RequireRole(models.RoleAdmin), controllers.AdjustQuotaBudget)
			}

			// Projects and phases
			projects := protected.Group("/projects")
			{
				projects.POST("", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.CreateProject)
				projects.GET("/:id", controllers.GetProject)
				projects.POST("/:id/phases", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.CreateProjectPhase)
			}
			protected.PATCH("/phases/:id/status", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.UpdatePhaseStatus)

			// Conferences
			conferences := protected.Group("/conferences")
			{
				conferences.POST("", controllers.CreateConference)
				conferences.GET("/:id", controllers.GetConference)
				conferences.PUT("/:id", controllers.UpdateConference)
				conferences.PATCH("/:id/submission-status", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.SetConferenceSubmissionStatus)
			}

			// Journals
			journals := protected.Group("/journals")
			{
				journals.POST("", controllers.CreateJournal)
				journals.GET("/:id", controllers.GetJournal)
				journals.PUT("/:id", controllers.UpdateJournal)
				journals.PATCH("/:id/publisher-status", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.SetJournalPublisherStatus)
			}

			// Disbursement requests (two-phase: create, then upload docs)
			disbursements := protected.Group("/disbursements")
			{
				disbursements.GET("", controllers.GetDisbursementRequests)
				disbursements.GET("/pending", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.GetPendingDisbursements)
				disbursements.GET("/:id", controllers.GetDisbursementRequest)
				disbursements.POST("", controllers.CreateDisbursementRequest)
				disbursements.POST("/:id/documents", controllers.UploadRequestDocuments)
				disbursements.POST("/:id/decision", middleware.RequireRole(models.RoleOfficer, models.RoleAdmin), controllers.DecideDisbursementRequest)
				disbursements.POST("/:id/payout", middleware.RequireRole(models.RoleAdmin), controllers.RecordDisbursementPayout)
			}

			protected.GET("/document-types", controllers.GetDocumentTypes)

			// Dashboard (read side, recomputed per call)
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/departments/:id/summary", controllers.GetDepartmentSummary)
				dashboard.GET("/projects/:id/budget", controllers.GetProjectBudget)
			}
		}
	}
}
