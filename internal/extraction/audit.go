package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

const auditSystemPrompt = `You are a risk assessment and internal audit reporting agent.
You will be given a risk register and audit context.

Generate a structured internal audit report. Respond with a single JSON object of this exact shape:

{
  "executive_summary": "high-level overview of the audit: department, objectives, most critical findings, overall risk posture in plain language",
  "risk_overview": "summary of identified risks: counts by severity, categories, significant root causes",
  "recommendations": ["prioritized, practical recommendation", "..."]
}

Guidelines:
1. Strictly follow the shape above; do not add fields.
2. Incorporate the department name in the executive summary.
3. Recommendations must clearly address the risks in the register.

Return only valid JSON matching the shape above.`

// auditSections is the raw model output shape for an audit report
type auditSections struct {
	ExecutiveSummary string   `json:"executive_summary"`
	RiskOverview     string   `json:"risk_overview"`
	Recommendations  []string `json:"recommendations"`
}

// GenerateAuditReport produces the narrative audit summary for a completed
// risk register. Same failure taxonomy as Extract.
func (a *Adapter) GenerateAuditReport(ctx context.Context, report *risk.Report, department string) (*risk.AuditReport, error) {
	registerJSON, err := json.Marshal(report.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal risk register: %w", err)
	}

	userPrompt := fmt.Sprintf("Department: %s\nRisk register: %s", department, registerJSON)

	output, err := a.completer.Complete(ctx, auditSystemPrompt, userPrompt)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var sections auditSections
	if err := json.Unmarshal([]byte(stripFences(output)), &sections); err != nil {
		return nil, &ParseError{Raw: output, Err: err}
	}

	if strings.TrimSpace(sections.ExecutiveSummary) == "" {
		return nil, &ValidationError{Err: fmt.Errorf("executive_summary is empty")}
	}

	a.logger.Info("Audit report generated",
		slog.Int("recommendation_count", len(sections.Recommendations)),
	)

	return &risk.AuditReport{
		ExecutiveSummary: sections.ExecutiveSummary,
		RiskOverview:     sections.RiskOverview,
		Recommendations:  sections.Recommendations,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}
