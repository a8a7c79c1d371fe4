package routes

import (
	"fyp-management-api/controllers"
	"fyp-management-api/middleware"
	"fyp-management-api/models"
	"fyp-management-api/store"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, st store.Store) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "FYP Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(st))
		{
			staffOnly := middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin)
			adminOnly := middleware.RequireRole(models.RoleAdmin)

			// Auth management
			protected.POST("/refresh", controllers.RefreshToken)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// User management
			users := protected.Group("/users")
			{
				users.GET("", adminOnly, controllers.GetUsers)
				users.POST("", adminOnly, controllers.CreateUser)
				users.GET("/:id", controllers.GetUser)
			}

			// Proposals
			proposals := protected.Group("/proposals")
			{
				proposals.GET("", controllers.GetProposals)
				proposals.GET("/:id", controllers.GetProposal)

				// Only students can submit proposals
				proposals.POST("", middleware.RequireRole(models.RoleStudent), controllers.CreateProposal)

				proposals.PUT("/:id", controllers.UpdateProposal)
				proposals.DELETE("/:id", controllers.DeleteProposal)

				// Only staff can approve/reject
				proposals.POST("/:id/approve", staffOnly, controllers.ApproveProposal)
				proposals.POST("/:id/reject", staffOnly, controllers.RejectProposal)
			}

			// Projects
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.GET("/:id", controllers.GetProject)
				projects.POST("", staffOnly, controllers.CreateProject)
				projects.PUT("/:id", staffOnly, controllers.UpdateProject)
				projects.PUT("/:id/status", staffOnly, controllers.TransitionProject)
				projects.DELETE("/:id", adminOnly, controllers.DeleteProject)
			}

			// Milestones
			milestones := protected.Group("/milestones")
			{
				milestones.GET("", controllers.GetMilestones)
				milestones.GET("/:id", controllers.GetMilestone)
				milestones.POST("", staffOnly, controllers.CreateMilestone)
				milestones.PUT("/:id", staffOnly, controllers.UpdateMilestone)
				milestones.PUT("/:id/complete", staffOnly, controllers.CompleteMilestone)
				milestones.DELETE("/:id", staffOnly, controllers.DeleteMilestone)
				milestones.POST("/sweep-overdue", adminOnly, controllers.SweepOverdueMilestones)
			}

			// Documents
			documents := protected.Group("/documents")
			{
				documents.GET("", controllers.GetDocuments)
				documents.GET("/:id", controllers.GetDocument)
				documents.GET("/:id/download", controllers.DownloadDocument)
				documents.POST("/upload", controllers.UploadDocument)
			}

			// Submissions and feedback threads
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", middleware.RequireRole(models.RoleStudent), controllers.CreateSubmission)
				submissions.GET("/:id/feedback", controllers.GetFeedbackThread)
				submissions.POST("/:id/feedback", controllers.PostFeedbackMessage)
			}

			// Evaluations
			evaluations := protected.Group("/evaluations")
			{
				evaluations.GET("", controllers.GetEvaluations)
				evaluations.GET("/:id", controllers.GetEvaluation)
				evaluations.POST("", controllers.CreateEvaluation)
			}

			// Rubrics
			rubrics := protected.Group("/rubrics")
			{
				rubrics.GET("", controllers.GetRubrics)
				rubrics.GET("/:id", controllers.GetRubric)
				rubrics.POST("", adminOnly, controllers.CreateRubric)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.GET("/:id", controllers.GetNotification)
				notifications.POST("", controllers.CreateNotification)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/mark-all-read", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/analytics", adminOnly, controllers.GetAnalytics)
			}
		}
	}
}
