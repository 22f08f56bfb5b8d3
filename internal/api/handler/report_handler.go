package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quangdm/risk-assessment-be/internal/api/dto"
	"github.com/quangdm/risk-assessment-be/internal/reporting"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

// GetReport handles GET /api/v1/reports/:questionnaire_id
// Returns the full risk register plus the audit report when available
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := c.Param("questionnaire_id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "questionnaire_id must be a valid UUID",
		})
		return
	}

	report, err := h.facade.Report(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := dto.ReportResponse{
		QuestionnaireID: id,
		Status:          string(store.StatusCompleted),
		Report:          report,
	}

	// Audit reports are optional; absence is not an error here
	auditReport, err := h.facade.AuditReport(c.Request.Context(), id)
	if err == nil {
		resp.AuditReport = auditReport
	} else if !errors.Is(err, reporting.ErrNoAuditReport) {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAuditReport handles GET /api/v1/reports/:questionnaire_id/audit-report
func (h *ReportHandler) GetAuditReport(c *gin.Context) {
	id := c.Param("questionnaire_id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "questionnaire_id must be a valid UUID",
		})
		return
	}

	auditReport, err := h.facade.AuditReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuditReportResponse{
		QuestionnaireID: id,
		AuditReport:     auditReport,
	})
}

// Export handles GET /api/v1/reports/:questionnaire_id/export?format=json|csv
func (h *ReportHandler) Export(c *gin.Context) {
	id := c.Param("questionnaire_id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "questionnaire_id must be a valid UUID",
		})
		return
	}

	format := c.DefaultQuery("format", reporting.FormatJSON)

	data, contentType, err := h.facade.Export(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if contentType == "text/csv" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=risk_register_%s.csv", id))
	}

	c.Data(http.StatusOK, contentType, data)
}
