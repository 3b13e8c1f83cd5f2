package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timecard.service/internal/core/model"
)

// PostgresPayrollRepository stores payroll periods as whole JSON documents
// keyed by the period id, with the worker status columns alongside so the
// async side effects can be updated without rewriting the document.
type PostgresPayrollRepository struct {
	DB *sql.DB
}

// NewPayrollRepository create new instance
func NewPayrollRepository(db *sql.DB) PayrollRepository {
	return &PostgresPayrollRepository{DB: db}
}

// GetPeriod fetches one period document.
func (r *PostgresPayrollRepository) GetPeriod(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.periodId", id))

	query := `SELECT doc, email_status, email_retry_count, export_status, export_retry_count
              FROM payroll_periods WHERE id = $1`

	var (
		doc          []byte
		emailStatus  sql.NullString
		emailRetry   int
		exportStatus sql.NullString
		exportRetry  int
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&doc, &emailStatus, &emailRetry, &exportStatus, &exportRetry)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p model.PayrollPeriod
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode period document %s: %w", id, err)
	}
	p.EmailStatus = model.NotifyStatus(emailStatus.String)
	p.EmailRetryCount = emailRetry
	p.ExportStatus = model.NotifyStatus(exportStatus.String)
	p.ExportRetry = exportRetry
	return &p, nil
}

// SavePeriod overwrites the whole period document. There is no partial-field
// update contract; last write wins.
func (r *PostgresPayrollRepository) SavePeriod(ctx context.Context, p model.PayrollPeriod) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.periodId", p.ID))

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode period document %s: %w", p.ID, err)
	}

	query := `INSERT INTO payroll_periods (id, doc, email_status, email_retry_count, export_status, export_retry_count)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (id) DO UPDATE
              SET doc = EXCLUDED.doc,
                  email_status = EXCLUDED.email_status,
                  email_retry_count = EXCLUDED.email_retry_count,
                  export_status = EXCLUDED.export_status,
                  export_retry_count = EXCLUDED.export_retry_count`

	_, err = r.DB.ExecContext(ctx, query,
		p.ID, doc, string(p.EmailStatus), p.EmailRetryCount, string(p.ExportStatus), p.ExportRetry)
	return err
}

// DeletePeriod removes a period and its confirmations in one transaction, so
// a failure can never leave confirmations orphaned.
func (r *PostgresPayrollRepository) DeletePeriod(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payroll_confirmations WHERE period_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM payroll_periods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ListPeriods returns all period documents, newest first by id.
func (r *PostgresPayrollRepository) ListPeriods(ctx context.Context) ([]model.PayrollPeriod, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT doc FROM payroll_periods ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []model.PayrollPeriod
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p model.PayrollPeriod
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decode period document: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// AddConfirmation records an employee confirmation for one item revision.
// Re-confirming the same revision is a no-op.
func (r *PostgresPayrollRepository) AddConfirmation(ctx context.Context, c model.PayrollConfirmation) error {
	query := `INSERT INTO payroll_confirmations (period_id, employee_id, revision, confirmed_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (period_id, employee_id, revision) DO NOTHING`

	_, err := r.DB.ExecContext(ctx, query, c.PeriodID, c.EmployeeID, c.Revision, c.ConfirmedAt)
	return err
}

// ListConfirmations returns every confirmation recorded for a period,
// including ones stale revisions have since invalidated.
func (r *PostgresPayrollRepository) ListConfirmations(ctx context.Context, periodID string) ([]model.PayrollConfirmation, error) {
	query := `SELECT period_id, employee_id, revision, confirmed_at
              FROM payroll_confirmations WHERE period_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var confirmations []model.PayrollConfirmation
	for rows.Next() {
		var c model.PayrollConfirmation
		if err := rows.Scan(&c.PeriodID, &c.EmployeeID, &c.Revision, &c.ConfirmedAt); err != nil {
			return nil, err
		}
		confirmations = append(confirmations, c)
	}
	return confirmations, rows.Err()
}

// UpdateEmailStatus updates the status and retry count for the payslip
// email job.
func (r *PostgresPayrollRepository) UpdateEmailStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error {
	query := `UPDATE payroll_periods
              SET email_status = $1,
                  email_retry_count = $2
              WHERE id = $3`

	_, err := r.DB.ExecContext(ctx, query, string(status), retryCount, id)
	return err
}

// UpdateExportStatus updates the status and retry count for the accounting
// export job.
func (r *PostgresPayrollRepository) UpdateExportStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error {
	query := `UPDATE payroll_periods
              SET export_status = $1,
                  export_retry_count = $2
              WHERE id = $3`

	_, err := r.DB.ExecContext(ctx, query, string(status), retryCount, id)
	return err
}
