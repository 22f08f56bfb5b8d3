package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quangdm/risk-assessment-be/internal/orchestrator"
	"github.com/quangdm/risk-assessment-be/internal/reporting"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Orchestrator *orchestrator.Orchestrator
	Facade       *reporting.Facade
}

// QuestionnaireHandler handles submission and status requests
type QuestionnaireHandler struct {
	logger       *slog.Logger
	orchestrator *orchestrator.Orchestrator
	facade       *reporting.Facade
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler instance
func NewQuestionnaireHandler(deps *Dependencies) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		logger:       deps.Logger,
		orchestrator: deps.Orchestrator,
		facade:       deps.Facade,
	}
}

// ReportHandler handles report retrieval and export requests
type ReportHandler struct {
	logger *slog.Logger
	facade *reporting.Facade
}

// NewReportHandler creates a new ReportHandler instance
func NewReportHandler(deps *Dependencies) *ReportHandler {
	return &ReportHandler{
		logger: deps.Logger,
		facade: deps.Facade,
	}
}

// respondError maps facade and store errors to well-defined HTTP outcomes
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var failed *reporting.ExtractionFailedError

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "questionnaire not found",
		})
	case errors.Is(err, reporting.ErrNotReady):
		c.JSON(http.StatusAccepted, gin.H{
			"message": "risk assessment is still in progress, please check back later",
		})
	case errors.Is(err, reporting.ErrNoAuditReport):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no audit report available for this questionnaire",
		})
	case errors.Is(err, reporting.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported export format, supported formats: json, csv",
		})
	case errors.As(err, &failed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": failed.Error(),
		})
	default:
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	}
}
