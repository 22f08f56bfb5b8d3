package dto

import (
	"time"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

type SubmitQuestionnaireRequest struct {
	QuestionnaireData string `json:"questionnaire_data" binding:"required"`
	Department        string `json:"department"`
	SubmittedBy       string `json:"submitted_by"`
}

type SubmitQuestionnaireResponse struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type StatusResponse struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updated_at"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

type ReportResponse struct {
	QuestionnaireID string            `json:"questionnaire_id"`
	Status          string            `json:"status"`
	Report          *risk.Report      `json:"report"`
	AuditReport     *risk.AuditReport `json:"audit_report,omitempty"`
}

type AuditReportResponse struct {
	QuestionnaireID string            `json:"questionnaire_id"`
	AuditReport     *risk.AuditReport `json:"audit_report"`
}
