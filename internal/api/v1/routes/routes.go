package routes

import (
	"github.com/gin-gonic/gin"

	"meeting-summarizer/internal/api/v1/handlers"
	"meeting-summarizer/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	SummaryService services.SummaryService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	summaryHandler := handlers.NewSummaryHandler(container.SummaryService)

	summaries := router.Group("/summaries")
	{
		summaries.POST("", summaryHandler.Create)
		summaries.GET("", summaryHandler.List)
		summaries.GET("/search", summaryHandler.Search)
		summaries.GET("/stats", summaryHandler.Stats)
		summaries.GET("/:id", summaryHandler.Get)
		summaries.PATCH("/:id", summaryHandler.Update)
		summaries.DELETE("/:id", summaryHandler.Delete)
		summaries.GET("/:id/export", summaryHandler.Export)
	}

	router.GET("/models", summaryHandler.Models)
}
