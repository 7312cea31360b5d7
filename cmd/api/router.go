package api

import (
	"net/http"

	directoryDelivery "slatrack-backend/internal/directory/delivery"
	trackingDelivery "slatrack-backend/internal/tracking/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, trackingHandler *trackingDelivery.TrackingHandler, directoryHandler *directoryDelivery.DirectoryHandler, cronSecret string) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Job triggers (cron secret)
		jobs := api.Group("/jobs")
		jobs.Use(CronAuthMiddleware(cronSecret))
		{
			jobs.POST("/ingest", trackingHandler.RunIngest)
			jobs.POST("/match", trackingHandler.RunMatch)
			jobs.POST("/aggregate", trackingHandler.RunAggregate)
		}

		// Read-only reports (cron secret)
		reports := api.Group("/reports")
		reports.Use(CronAuthMiddleware(cronSecret))
		{
			reports.GET("/first-responses", trackingHandler.GetFirstResponses)
			reports.GET("/unresponded", trackingHandler.GetUnresponded)
			reports.GET("/metrics", trackingHandler.GetMetrics)
		}

		// Directory maintenance (cron secret)
		directory := api.Group("/directory")
		directory.Use(CronAuthMiddleware(cronSecret))
		{
			directory.GET("/employees", directoryHandler.GetEmployees)
			directory.POST("/employees", directoryHandler.CreateEmployee)
			directory.DELETE("/employees/:email", directoryHandler.DeleteEmployee)
			directory.GET("/assignments", directoryHandler.GetAssignments)
			directory.POST("/assignments", directoryHandler.CreateAssignment)
		}
	}
}
