package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quangdm/risk-assessment-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "risk-assessment-service",
		})
	})

	questionnaireHandler := handler.NewQuestionnaireHandler(deps)
	reportHandler := handler.NewReportHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		questionnaire := v1.Group("/questionnaire")
		{
			// POST /api/v1/questionnaire/submit - Submit a questionnaire for assessment
			questionnaire.POST("/submit", questionnaireHandler.Submit)

			// GET /api/v1/questionnaire/:questionnaire_id/status - Poll processing status
			questionnaire.GET("/:questionnaire_id/status", questionnaireHandler.GetStatus)
		}

		reports := v1.Group("/reports")
		{
			// GET /api/v1/reports/:questionnaire_id - Get the risk assessment report
			reports.GET("/:questionnaire_id", reportHandler.GetReport)

			// GET /api/v1/reports/:questionnaire_id/audit-report - Get the audit report
			reports.GET("/:questionnaire_id/audit-report", reportHandler.GetAuditReport)

			// GET /api/v1/reports/:questionnaire_id/export - Export the risk register
			reports.GET("/:questionnaire_id/export", reportHandler.Export)
		}
	}

	return r
}
