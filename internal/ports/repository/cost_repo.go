package repository

import (
	"context"
	"database/sql"

	"timecard.service/internal/core/model"
)

// PostgresCostRepository stores mileage and expense records.
type PostgresCostRepository struct {
	DB *sql.DB
}

// NewCostRepository create new instance
func NewCostRepository(db *sql.DB) CostRepository {
	return &PostgresCostRepository{DB: db}
}

// CreateMileage records one reimbursable trip.
func (r *PostgresCostRepository) CreateMileage(ctx context.Context, m model.MileageRecord) error {
	query := `INSERT INTO mileage (id, employee_id, site, km, ts, note)
              VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctx, query, m.ID, m.EmployeeID, m.Site, m.Km, m.TS, m.Note)
	return err
}

// ListMileage returns mileage records with ts in [fromMs, toMs).
func (r *PostgresCostRepository) ListMileage(ctx context.Context, fromMs, toMs int64) ([]model.MileageRecord, error) {
	query := `SELECT id, employee_id, site, km, ts, note
              FROM mileage WHERE ts >= $1 AND ts < $2`

	rows, err := r.DB.QueryContext(ctx, query, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.MileageRecord
	for rows.Next() {
		var (
			m    model.MileageRecord
			site sql.NullString
			note sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.EmployeeID, &site, &m.Km, &m.TS, &note); err != nil {
			return nil, err
		}
		m.Site = site.String
		m.Note = note.String
		records = append(records, m)
	}
	return records, rows.Err()
}

// CreateExpense records one out-of-pocket cost.
func (r *PostgresCostRepository) CreateExpense(ctx context.Context, e model.ExpenseRecord) error {
	query := `INSERT INTO expenses (id, employee_id, site, amount, ts, note)
              VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctx, query, e.ID, e.EmployeeID, e.Site, e.Amount, e.TS, e.Note)
	return err
}

// ListExpenses returns expense records with ts in [fromMs, toMs).
func (r *PostgresCostRepository) ListExpenses(ctx context.Context, fromMs, toMs int64) ([]model.ExpenseRecord, error) {
	query := `SELECT id, employee_id, site, amount, ts, note
              FROM expenses WHERE ts >= $1 AND ts < $2`

	rows, err := r.DB.QueryContext(ctx, query, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ExpenseRecord
	for rows.Next() {
		var (
			e    model.ExpenseRecord
			site sql.NullString
			note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &site, &e.Amount, &e.TS, &note); err != nil {
			return nil, err
		}
		e.Site = site.String
		e.Note = note.String
		records = append(records, e)
	}
	return records, rows.Err()
}
