package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/quangdm/risk-assessment-be/internal/risk"
)

// uniqueViolation is the Postgres error code for duplicate keys
const uniqueViolation = "23505"

// Postgres is the production Store backed by the questionnaires table.
// Transitions rely on row-level atomicity of conditional UPDATEs, so writers
// for the same id serialize while distinct ids proceed independently.
type Postgres struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgres creates a Postgres-backed store
func NewPostgres(db *sqlx.DB, logger *slog.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

// jobRow mirrors the questionnaires table
type jobRow struct {
	ID                string         `db:"questionnaire_id"`
	QuestionnaireText string         `db:"questionnaire_text"`
	Department        string         `db:"department"`
	SubmittedBy       string         `db:"submitted_by"`
	Status            string         `db:"status"`
	Report            []byte         `db:"report"`
	AuditReport       []byte         `db:"audit_report"`
	ErrorMessage      sql.NullString `db:"error_message"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (p *Postgres) Create(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO questionnaires (
			questionnaire_id, questionnaire_text, department, submitted_by,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.QuestionnaireText,
		job.Department,
		job.SubmittedBy,
		string(job.Status),
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to create questionnaire job: %w", err)
	}

	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Job, error) {
	query := `
		SELECT questionnaire_id, questionnaire_text, department, submitted_by,
		       status, report, audit_report, error_message, created_at, updated_at
		FROM questionnaires
		WHERE questionnaire_id = $1
	`

	var row jobRow
	if err := p.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get questionnaire job: %w", err)
	}

	return rowToJob(&row)
}

func (p *Postgres) UpdateStatus(ctx context.Context, id string, status Status, report *risk.Report, errMsg string) error {
	prev := allowedPrev[status]
	if len(prev) == 0 {
		return ErrInvalidTransition
	}

	var reportJSON []byte
	if report != nil {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = data
	}

	query := `
		UPDATE questionnaires
		SET status = $1,
		    report = $2,
		    error_message = NULLIF($3, ''),
		    updated_at = NOW()
		WHERE questionnaire_id = $4
		  AND status = ANY($5)
	`

	result, err := p.db.ExecContext(ctx, query, string(status), reportJSON, errMsg, id, pq.Array(statusStrings(prev)))
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		// Distinguish a missing row from a losing writer
		var current string
		err := p.db.GetContext(ctx, &current, `SELECT status FROM questionnaires WHERE questionnaire_id = $1`, id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check job status: %w", err)
		}

		p.logger.Warn("Rejected out-of-order status transition",
			slog.String("questionnaire_id", id),
			slog.String("current_status", current),
			slog.String("requested_status", string(status)),
		)
		return ErrInvalidTransition
	}

	p.logger.Info("Job status updated",
		slog.String("questionnaire_id", id),
		slog.String("status", string(status)),
	)

	return nil
}

func (p *Postgres) AttachAuditReport(ctx context.Context, id string, auditReport *risk.AuditReport) error {
	data, err := json.Marshal(auditReport)
	if err != nil {
		return fmt.Errorf("failed to marshal audit report: %w", err)
	}

	query := `
		UPDATE questionnaires
		SET audit_report = $1,
		    updated_at = NOW()
		WHERE questionnaire_id = $2
		  AND status = $3
	`

	result, err := p.db.ExecContext(ctx, query, data, id, string(StatusCompleted))
	if err != nil {
		return fmt.Errorf("failed to attach audit report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		var current string
		err := p.db.GetContext(ctx, &current, `SELECT status FROM questionnaires WHERE questionnaire_id = $1`, id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check job status: %w", err)
		}
		return ErrInvalidTransition
	}

	return nil
}

func rowToJob(row *jobRow) (*Job, error) {
	job := &Job{
		ID:                row.ID,
		QuestionnaireText: row.QuestionnaireText,
		Department:        row.Department,
		SubmittedBy:       row.SubmittedBy,
		Status:            Status(row.Status),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}

	if row.ErrorMessage.Valid {
		job.ErrorMessage = row.ErrorMessage.String
	}

	if len(row.Report) > 0 {
		var report risk.Report
		if err := json.Unmarshal(row.Report, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
		}
		job.Report = &report
	}

	if len(row.AuditReport) > 0 {
		var auditReport risk.AuditReport
		if err := json.Unmarshal(row.AuditReport, &auditReport); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored audit report: %w", err)
		}
		job.AuditReport = &auditReport
	}

	return job, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
