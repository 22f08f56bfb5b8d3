package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quangdm/risk-assessment-be/internal/api/dto"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

// Submit handles POST /api/v1/questionnaire/submit
// Accepts a CSA questionnaire and starts background risk extraction
func (h *QuestionnaireHandler) Submit(c *gin.Context) {
	var req dto.SubmitQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "questionnaire_data is required",
		})
		return
	}

	id, err := h.orchestrator.Submit(c.Request.Context(), req.QuestionnaireData, req.Department, req.SubmittedBy)
	if err != nil {
		h.logger.Error("Failed to submit questionnaire", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to submit questionnaire",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitQuestionnaireResponse{
		QuestionnaireID: id,
		Status:          string(store.StatusPending),
		Message:         "Questionnaire submitted successfully. Processing started.",
		SubmittedAt:     time.Now().UTC(),
	})
}

// GetStatus handles GET /api/v1/questionnaire/:questionnaire_id/status
func (h *QuestionnaireHandler) GetStatus(c *gin.Context) {
	id := c.Param("questionnaire_id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "questionnaire_id must be a valid UUID",
		})
		return
	}

	view, err := h.facade.Status(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		QuestionnaireID: id,
		Status:          string(view.Status),
		UpdatedAt:       view.UpdatedAt,
		ErrorMessage:    view.ErrorMessage,
	})
}
