package risk

import (
	"fmt"
	"strings"
	"time"
)

// Severity levels for likelihood and impact ratings
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Entry is a single identified risk within a register
type Entry struct {
	RiskID      int    `json:"risk_id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Likelihood  string `json:"likelihood"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// Report is the full risk register produced for one questionnaire
type Report struct {
	JobID       string    `json:"job_id"`
	Entries     []Entry   `json:"entries"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SchemaError reports a required field that is missing or has the wrong shape
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed on field %q: %s", e.Field, e.Reason)
}

// NormalizeSeverity maps a case-insensitive severity label to its canonical
// form. Returns false if the label is not in the fixed set.
func NormalizeSeverity(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	default:
		return "", false
	}
}

// Validate checks loosely-typed JSON data against the risk register schema and
// returns the canonical report. Unknown fields are ignored. Risk ids are
// assigned sequentially in extraction order, so id uniqueness holds by
// construction regardless of what the model returned.
func Validate(raw map[string]any) (*Report, error) {
	rawEntries, ok := raw["entries"]
	if !ok {
		return nil, &SchemaError{Field: "entries", Reason: "required field is missing"}
	}

	list, ok := rawEntries.([]any)
	if !ok {
		return nil, &SchemaError{Field: "entries", Reason: "must be a sequence"}
	}

	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("entries[%d]", i),
				Reason: "must be an object",
			}
		}

		entry, err := validateEntry(obj, i)
		if err != nil {
			return nil, err
		}
		entry.RiskID = i + 1
		entries = append(entries, entry)
	}

	return &Report{Entries: entries}, nil
}

func validateEntry(obj map[string]any, idx int) (Entry, error) {
	description, err := stringField(obj, "description", idx)
	if err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(description) == "" {
		return Entry{}, &SchemaError{
			Field:  fmt.Sprintf("entries[%d].description", idx),
			Reason: "must be a non-empty string",
		}
	}

	category, err := stringField(obj, "category", idx)
	if err != nil {
		return Entry{}, err
	}

	likelihood, err := severityField(obj, "likelihood", idx)
	if err != nil {
		return Entry{}, err
	}

	impact, err := severityField(obj, "impact", idx)
	if err != nil {
		return Entry{}, err
	}

	mitigation, err := stringField(obj, "mitigation", idx)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Likelihood:  likelihood,
		Impact:      impact,
		Mitigation:  strings.TrimSpace(mitigation),
	}, nil
}

// stringField reads an optional string field; present values must be strings
func stringField(obj map[string]any, key string, idx int) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{
			Field:  fmt.Sprintf("entries[%d].%s", idx, key),
			Reason: "must be a string",
		}
	}
	return s, nil
}

// severityField reads a required severity field and normalizes its casing
func severityField(obj map[string]any, key string, idx int) (string, error) {
	field := fmt.Sprintf("entries[%d].%s", idx, key)

	v, ok := obj[key]
	if !ok || v == nil {
		return "", &SchemaError{Field: field, Reason: "required field is missing"}
	}

	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: field, Reason: "must be a string"}
	}

	canonical, ok := NormalizeSeverity(s)
	if !ok {
		return "", &SchemaError{
			Field:  field,
			Reason: fmt.Sprintf("%q is not one of low, medium, high", s),
		}
	}
	return canonical, nil
}
