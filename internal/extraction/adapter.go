package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

// extractionSystemPrompt asks for the exact JSON shape the risk register
// schema validates. Deterministic: the questionnaire text is the only
// variable input.
const extractionSystemPrompt = `You are a risk assessment agent.
You will be given Control Self-Assessment (CSA) questionnaire answers in free text.

Your task is to generate a complete risk register. Respond with a single JSON object of this exact shape:

{
  "entries": [
    {
      "description": "concise description of the risk event",
      "category": "classification such as operational, financial, compliance, data security",
      "likelihood": "low | medium | high",
      "impact": "low | medium | high",
      "mitigation": "suggested control or mitigation, empty string if none identified"
    }
  ]
}

Rules:
1. Identify and describe every risk separately - do not merge multiple risks into one.
2. Populate fields only from information in the questionnaire; never invent data.
3. likelihood and impact must be exactly one of: low, medium, high.
4. Do not add fields outside the schema and do not wrap the JSON in markdown.

Return only valid JSON matching the shape above.`

// Completer is the language-model capability the adapter depends on
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Adapter turns free-text questionnaires into validated risk registers.
// It holds no mutable state; the only side effect is the model call.
type Adapter struct {
	completer Completer
	logger    *slog.Logger
}

// NewAdapter creates a new extraction adapter
func NewAdapter(completer Completer, logger *slog.Logger) *Adapter {
	return &Adapter{completer: completer, logger: logger}
}

// Extract builds the instruction prompt, invokes the model, and parses and
// validates its output into a risk register. Failure kinds are kept apart so
// the orchestrator can retry transport errors and fail fast on the rest.
func (a *Adapter) Extract(ctx context.Context, questionnaireText string) (*risk.Report, error) {
	output, err := a.completer.Complete(ctx, extractionSystemPrompt, questionnaireText)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(output)), &raw); err != nil {
		a.logger.Error("Model returned unparseable output",
			slog.String("error", err.Error()),
			slog.Int("output_size", len(output)),
		)
		return nil, &ParseError{Raw: output, Err: err}
	}

	report, err := risk.Validate(raw)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	a.logger.Info("Risk register extracted",
		slog.Int("entry_count", len(report.Entries)),
	)

	return report, nil
}

// stripFences removes a markdown code fence some models wrap JSON in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
