package risk

import "time"

// AuditReport is the narrative audit summary generated from a completed
// risk register. It is attached to the owning job after extraction succeeds
// and is always optional.
type AuditReport struct {
	ExecutiveSummary string    `json:"executive_summary"`
	RiskOverview     string    `json:"risk_overview"`
	Recommendations  []string  `json:"recommendations"`
	GeneratedAt      time.Time `json:"generated_at"`
}
