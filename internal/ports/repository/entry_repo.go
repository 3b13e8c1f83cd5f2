package repository

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timecard.service/internal/core/model"
)

// PostgresEntryRepository is the concrete entry-log store for PostgreSQL.
type PostgresEntryRepository struct {
	DB *sql.DB
}

// NewEntryRepository create new instance
func NewEntryRepository(db *sql.DB) EntryRepository {
	return &PostgresEntryRepository{DB: db}
}

// CreateEntry records one clock action.
func (r *PostgresEntryRepository) CreateEntry(ctx context.Context, e model.Entry) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", e.EmployeeID))

	query := `INSERT INTO entries (id, employee, employee_id, action, ts, site, lat, lng, note)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Employee, e.EmployeeID, string(e.Action), e.TS, e.Site, e.Lat, e.Lng, e.Note)
	return err
}

// GetEntry fetches a single entry by id.
func (r *PostgresEntryRepository) GetEntry(ctx context.Context, id string) (*model.Entry, error) {
	query := `SELECT id, employee, employee_id, action, ts, site, lat, lng, note
              FROM entries WHERE id = $1`

	e, err := scanEntry(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns the entry log for a half-open window of timestamps.
func (r *PostgresEntryRepository) ListEntries(ctx context.Context, fromMs, toMs int64) ([]model.Entry, error) {
	query := `SELECT id, employee, employee_id, action, ts, site, lat, lng, note
              FROM entries WHERE ts >= $1 AND ts < $2`

	rows, err := r.DB.QueryContext(ctx, query, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// FindLastAction get the most recent clock action for an employee.
func (r *PostgresEntryRepository) FindLastAction(ctx context.Context, employeeID string) (*model.Entry, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	query := `SELECT id, employee, employee_id, action, ts, site, lat, lng, note
              FROM entries
              WHERE employee_id = $1
              ORDER BY ts DESC
              LIMIT 1`

	e, err := scanEntry(r.DB.QueryRowContext(ctx, query, employeeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry overwrites a manager-corrected entry in place.
func (r *PostgresEntryRepository) UpdateEntry(ctx context.Context, e model.Entry) error {
	query := `UPDATE entries
              SET employee = $1,
                  employee_id = $2,
                  action = $3,
                  ts = $4,
                  site = $5,
                  lat = $6,
                  lng = $7,
                  note = $8
              WHERE id = $9`

	res, err := r.DB.ExecContext(ctx, query,
		e.Employee, e.EmployeeID, string(e.Action), e.TS, e.Site, e.Lat, e.Lng, e.Note, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntry removes an entry from the log.
func (r *PostgresEntryRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		e      model.Entry
		action string
		site   sql.NullString
		note   sql.NullString
	)
	err := row.Scan(&e.ID, &e.Employee, &e.EmployeeID, &action, &e.TS, &site, &e.Lat, &e.Lng, &note)
	if err != nil {
		return nil, err
	}
	e.Action = model.ClockAction(action)
	e.Site = site.String
	e.Note = note.String
	return &e, nil
}
