package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", ActorMiddleware())
	{
		v1.GET("/templates/download", handler.DownloadTemplate)

		submissions := v1.Group("/submissions")
		{
			submissions.POST("/upload", handler.Upload)
			submissions.POST("/upload/async", handler.UploadAsync)
			submissions.GET("", handler.ListSubmissions)
			submissions.GET("/:id", handler.GetSubmission)
			submissions.GET("/:id/lines", handler.GetLines)
			submissions.PUT("/:id/close", handler.CloseSubmission)
			submissions.PUT("/:id/reject", handler.RejectSubmission)
			submissions.DELETE("/:id", handler.DeleteSubmission)
		}

		downloads := v1.Group("/downloads")
		{
			downloads.GET("/original/:id", handler.DownloadOriginal)
			downloads.GET("/errors/:id", handler.DownloadErrors)
			downloads.GET("/excel/:id", handler.DownloadReport)
			downloads.GET("/consolidated", handler.DownloadConsolidated)
		}
	}
}
