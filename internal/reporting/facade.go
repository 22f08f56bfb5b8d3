package reporting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quangdm/risk-assessment-be/internal/risk"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var (
	// ErrNotReady is returned when the job has not reached a terminal state
	ErrNotReady = errors.New("risk register is not ready yet")

	// ErrNoAuditReport is returned when a completed job has no audit report
	ErrNoAuditReport = errors.New("no audit report generated for this questionnaire")

	// ErrUnsupportedFormat is returned for export formats other than json/csv
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ExtractionFailedError is returned when the job ended in the failed state
type ExtractionFailedError struct {
	Message string
}

func (e *ExtractionFailedError) Error() string {
	return "risk extraction failed: " + e.Message
}

// StatusView is the read-only status projection of a job
type StatusView struct {
	Status       store.Status
	UpdatedAt    time.Time
	ErrorMessage string
}

// Facade provides read-only projections over the job state store
type Facade struct {
	store store.Store
}

// NewFacade creates a new retrieval facade
func NewFacade(s store.Store) *Facade {
	return &Facade{store: s}
}

// Status returns the current lifecycle status of a job
func (f *Facade) Status(ctx context.Context, id string) (*StatusView, error) {
	job, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &StatusView{
		Status:       job.Status,
		UpdatedAt:    job.UpdatedAt,
		ErrorMessage: job.ErrorMessage,
	}, nil
}

// Report returns the stored risk register of a completed job
func (f *Facade) Report(ctx context.Context, id string) (*risk.Report, error) {
	job, err := f.completedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return job.Report, nil
}

// AuditReport returns the audit report of a completed job, if one was generated
func (f *Facade) AuditReport(ctx context.Context, id string) (*risk.AuditReport, error) {
	job, err := f.completedJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.AuditReport == nil {
		return nil, ErrNoAuditReport
	}
	return job.AuditReport, nil
}

// Export renders the risk register in the requested format and returns the
// payload with its content type
func (f *Facade) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	report, err := f.Report(ctx, id)
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := report.JSON()
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case FormatCSV:
		data, err := report.CSV()
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv", nil
	default:
		return nil, "", ErrUnsupportedFormat
	}
}

// completedJob applies the shared readiness gating for report reads
func (f *Facade) completedJob(ctx context.Context, id string) (*store.Job, error) {
	job, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case store.StatusPending, store.StatusProcessing:
		return nil, ErrNotReady
	case store.StatusFailed:
		return nil, &ExtractionFailedError{Message: job.ErrorMessage}
	}

	return job, nil
}
