package repository

import (
	"context"
	"errors"

	"timecard.service/internal/core/model"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// EntryRepository is the persistence contract for the clock entry log.
type EntryRepository interface {
	CreateEntry(ctx context.Context, e model.Entry) error
	GetEntry(ctx context.Context, id string) (*model.Entry, error)
	// ListEntries returns entries with ts in [fromMs, toMs) in storage
	// order; readers must not rely on it being sorted.
	ListEntries(ctx context.Context, fromMs, toMs int64) ([]model.Entry, error)
	// FindLastAction returns the employee's most recent entry, or nil.
	FindLastAction(ctx context.Context, employeeID string) (*model.Entry, error)
	UpdateEntry(ctx context.Context, e model.Entry) error
	DeleteEntry(ctx context.Context, id string) error
}

// SettingsRepository stores the single settings document.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}

// CostRepository stores mileage and expense records.
type CostRepository interface {
	CreateMileage(ctx context.Context, m model.MileageRecord) error
	ListMileage(ctx context.Context, fromMs, toMs int64) ([]model.MileageRecord, error)
	CreateExpense(ctx context.Context, e model.ExpenseRecord) error
	ListExpenses(ctx context.Context, fromMs, toMs int64) ([]model.ExpenseRecord, error)
}

// PayrollRepository stores payroll periods as whole documents plus the
// confirmation log. Period writes always overwrite the full document.
type PayrollRepository interface {
	GetPeriod(ctx context.Context, id string) (*model.PayrollPeriod, error)
	SavePeriod(ctx context.Context, p model.PayrollPeriod) error
	DeletePeriod(ctx context.Context, id string) error
	ListPeriods(ctx context.Context) ([]model.PayrollPeriod, error)
	AddConfirmation(ctx context.Context, c model.PayrollConfirmation) error
	ListConfirmations(ctx context.Context, periodID string) ([]model.PayrollConfirmation, error)
	UpdateEmailStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error
	UpdateExportStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error
}
