package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quangdm/risk-assessment-be/internal/events"
	"github.com/quangdm/risk-assessment-be/internal/extraction"
	"github.com/quangdm/risk-assessment-be/internal/risk"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

const publishTimeout = 5 * time.Second

// Extractor is the extraction capability the orchestrator drives
type Extractor interface {
	Extract(ctx context.Context, questionnaireText string) (*risk.Report, error)
	GenerateAuditReport(ctx context.Context, report *risk.Report, department string) (*risk.AuditReport, error)
}

// Config holds orchestrator configuration
type Config struct {
	Store     store.Store
	Extractor Extractor
	Publisher events.Publisher
	Logger    *slog.Logger

	// MaxRetries is the number of additional extraction attempts after the
	// first one, applied to transport errors only
	MaxRetries int

	// RetryBackoff is the delay between extraction attempts
	RetryBackoff time.Duration

	// MaxConcurrent bounds in-flight extraction tasks
	MaxConcurrent int
}

// Orchestrator drives submitted questionnaires through the job lifecycle.
// Submission never blocks on extraction: each job gets one background task
// that always ends in a terminal transition.
type Orchestrator struct {
	store        store.Store
	extractor    Extractor
	publisher    events.Publisher
	logger       *slog.Logger
	maxRetries   int
	retryBackoff time.Duration
	slots        chan struct{}
	wg           sync.WaitGroup
}

// New creates a new orchestrator
func New(cfg *Config) *Orchestrator {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &Orchestrator{
		store:        cfg.Store,
		extractor:    cfg.Extractor,
		publisher:    publisher,
		logger:       cfg.Logger,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		slots:        make(chan struct{}, maxConcurrent),
	}
}

// Submit creates the job record and schedules extraction to run out-of-band.
// The caller gets the job id as soon as the record exists.
func (o *Orchestrator) Submit(ctx context.Context, questionnaireText, department, submittedBy string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	job := &store.Job{
		ID:                id,
		QuestionnaireText: questionnaireText,
		Department:        department,
		SubmittedBy:       submittedBy,
		Status:            store.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := o.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create questionnaire job: %w", err)
	}

	o.logger.Info("Questionnaire submitted",
		slog.String("questionnaire_id", id),
		slog.String("department", department),
	)

	o.wg.Add(1)
	go o.process(id, questionnaireText, department)

	return id, nil
}

// Close waits for all in-flight extraction tasks to finish
func (o *Orchestrator) Close() {
	o.wg.Wait()
}

// process is the background task, one per job. Whatever happens inside, the
// job ends in a terminal state: every error path maps to a failed transition
// and panics are caught at this boundary.
func (o *Orchestrator) process(id, questionnaireText, department string) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Extraction task panicked",
				slog.String("questionnaire_id", id),
				slog.Any("panic", r),
			)
			o.fail(id, fmt.Sprintf("internal error during extraction: %v", r))
		}
	}()

	// Admission: wait for a worker slot before touching the job
	o.slots <- struct{}{}
	defer func() { <-o.slots }()

	ctx := context.Background()

	if err := o.store.UpdateStatus(ctx, id, store.StatusProcessing, nil, ""); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			// Already past pending; nothing to do
			o.logger.Warn("Skipping extraction for job not in pending state",
				slog.String("questionnaire_id", id),
			)
			return
		}
		o.fail(id, "failed to start processing: "+err.Error())
		return
	}

	report, err := o.extractWithRetry(ctx, id, questionnaireText)
	if err != nil {
		o.fail(id, "risk extraction failed: "+err.Error())
		return
	}

	report.JobID = id
	report.GeneratedAt = time.Now().UTC()

	if err := o.store.UpdateStatus(ctx, id, store.StatusCompleted, report, ""); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			return
		}
		o.fail(id, "failed to store report: "+err.Error())
		return
	}

	o.logger.Info("Questionnaire processing completed",
		slog.String("questionnaire_id", id),
		slog.Int("entry_count", len(report.Entries)),
	)

	o.publish(id, store.StatusCompleted, "")
	o.attachAuditReport(ctx, id, report, department)
}

// extractWithRetry retries transport errors up to the configured bound.
// Parse and validation errors are surfaced immediately.
func (o *Orchestrator) extractWithRetry(ctx context.Context, id, questionnaireText string) (*risk.Report, error) {
	attempts := o.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		report, err := o.extractor.Extract(ctx, questionnaireText)
		if err == nil {
			return report, nil
		}

		var transportErr *extraction.TransportError
		if !errors.As(err, &transportErr) {
			return nil, err
		}

		lastErr = err
		o.logger.Warn("Extraction attempt failed with transport error",
			slog.String("questionnaire_id", id),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("error", err.Error()),
		)

		if attempt < attempts && o.retryBackoff > 0 {
			time.Sleep(o.retryBackoff)
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// fail drives the job to the failed state. A rejected transition means the
// job already reached a terminal state, which makes this a no-op.
func (o *Orchestrator) fail(id, message string) {
	ctx := context.Background()

	err := o.store.UpdateStatus(ctx, id, store.StatusFailed, nil, message)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			return
		}
		o.logger.Error("Failed to mark job as failed",
			slog.String("questionnaire_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	o.logger.Error("Questionnaire processing failed",
		slog.String("questionnaire_id", id),
		slog.String("reason", message),
	)

	o.publish(id, store.StatusFailed, message)
}

// attachAuditReport generates and stores the audit report after completion.
// Best-effort: the job stays completed even if this fails.
func (o *Orchestrator) attachAuditReport(ctx context.Context, id string, report *risk.Report, department string) {
	auditReport, err := o.extractor.GenerateAuditReport(ctx, report, department)
	if err != nil {
		o.logger.Warn("Audit report generation failed",
			slog.String("questionnaire_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := o.store.AttachAuditReport(ctx, id, auditReport); err != nil {
		o.logger.Error("Failed to store audit report",
			slog.String("questionnaire_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) publish(id string, status store.Status, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := events.JobEvent{
		QuestionnaireID: id,
		Status:          string(status),
		ErrorMessage:    errMsg,
		OccurredAt:      time.Now().UTC(),
	}

	if err := o.publisher.PublishJobEvent(ctx, event); err != nil {
		o.logger.Warn("Failed to publish job event",
			slog.String("questionnaire_id", id),
			slog.String("error", err.Error()),
		)
	}
}
