package store

import (
	"context"
	"errors"
	"time"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

// Status is the lifecycle state of a questionnaire job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions may leave this status
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// allowedPrev maps a target status to the statuses it may be entered from.
// failed is reachable from pending so that a job whose processing claim
// itself breaks can still be driven to a terminal state.
var allowedPrev = map[Status][]Status{
	StatusProcessing: {StatusPending},
	StatusCompleted:  {StatusProcessing},
	StatusFailed:     {StatusPending, StatusProcessing},
}

// CanTransition reports whether from -> to is a legal forward transition
func CanTransition(from, to Status) bool {
	for _, prev := range allowedPrev[to] {
		if prev == from {
			return true
		}
	}
	return false
}

// Job is one submitted questionnaire and its processing state
type Job struct {
	ID                string
	QuestionnaireText string
	Department        string
	SubmittedBy       string
	Status            Status
	Report            *risk.Report
	AuditReport       *risk.AuditReport
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var (
	// ErrNotFound is returned when no job exists for the given id
	ErrNotFound = errors.New("questionnaire job not found")

	// ErrDuplicateID is returned when creating a job whose id already exists
	ErrDuplicateID = errors.New("questionnaire job id already exists")

	// ErrInvalidTransition is returned when a status update does not follow
	// the forward ordering pending -> processing -> completed/failed
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Store is the keyed, concurrency-safe job state store. Updates for the same
// id are serialized; operations on different ids do not block each other.
type Store interface {
	// Create inserts a new job keyed by its id
	Create(ctx context.Context, job *Job) error

	// Get returns the job for the given id
	Get(ctx context.Context, id string) (*Job, error)

	// UpdateStatus atomically applies one forward transition and touches
	// UpdatedAt. The report may only accompany completed, the error message
	// only failed.
	UpdateStatus(ctx context.Context, id string, status Status, report *risk.Report, errMsg string) error

	// AttachAuditReport stores the audit report on a completed job
	AttachAuditReport(ctx context.Context, id string, auditReport *risk.AuditReport) error
}
