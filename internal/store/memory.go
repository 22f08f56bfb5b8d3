package store

import (
	"context"
	"sync"
	"time"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

// Memory is an in-memory Store used in tests and single-node development.
// One mutex-guarded map holds all job state.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*Job)}
}

func (m *Memory) Create(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return ErrDuplicateID
	}

	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(job), nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id string, status Status, report *risk.Report, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}

	if !CanTransition(job.Status, status) {
		return ErrInvalidTransition
	}

	job.Status = status
	job.Report = cloneReport(report)
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) AttachAuditReport(ctx context.Context, id string, auditReport *risk.AuditReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}

	if job.Status != StatusCompleted {
		return ErrInvalidTransition
	}

	job.AuditReport = cloneAuditReport(auditReport)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// cloneJob copies a job so callers never share mutable state with the store
func cloneJob(job *Job) *Job {
	clone := *job
	clone.Report = cloneReport(job.Report)
	clone.AuditReport = cloneAuditReport(job.AuditReport)
	return &clone
}

func cloneReport(report *risk.Report) *risk.Report {
	if report == nil {
		return nil
	}
	clone := *report
	clone.Entries = append([]risk.Entry(nil), report.Entries...)
	return &clone
}

func cloneAuditReport(auditReport *risk.AuditReport) *risk.AuditReport {
	if auditReport == nil {
		return nil
	}
	clone := *auditReport
	clone.Recommendations = append([]string(nil), auditReport.Recommendations...)
	return &clone
}
