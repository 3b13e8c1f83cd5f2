package core

import (
	"context"
	"sync"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/repository"
)

// In-memory repository doubles. They keep the same contracts as the Postgres
// implementations (ErrNotFound, half-open windows) so the services can't tell
// the difference.

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []model.Entry
}

func (r *fakeEntryRepo) CreateEntry(_ context.Context, e model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeEntryRepo) GetEntry(_ context.Context, id string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			copied := e
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEntryRepo) ListEntries(_ context.Context, fromMs, toMs int64) ([]model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Entry
	for _, e := range r.entries {
		if e.TS >= fromMs && e.TS < toMs {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindLastAction(_ context.Context, employeeID string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *model.Entry
	for i := range r.entries {
		e := r.entries[i]
		if e.EmployeeID != employeeID {
			continue
		}
		if last == nil || e.TS >= last.TS {
			copied := e
			last = &copied
		}
	}
	return last, nil
}

func (r *fakeEntryRepo) UpdateEntry(_ context.Context, e model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == e.ID {
			r.entries[i] = e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeEntryRepo) DeleteEntry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSettingsRepo struct {
	settings model.Settings
}

func (r *fakeSettingsRepo) GetSettings(context.Context) (model.Settings, error) {
	return r.settings, nil
}

func (r *fakeSettingsRepo) SaveSettings(_ context.Context, s model.Settings) error {
	r.settings = s
	return nil
}

type fakeCostRepo struct {
	mileage  []model.MileageRecord
	expenses []model.ExpenseRecord
}

func (r *fakeCostRepo) CreateMileage(_ context.Context, m model.MileageRecord) error {
	r.mileage = append(r.mileage, m)
	return nil
}

func (r *fakeCostRepo) ListMileage(_ context.Context, fromMs, toMs int64) ([]model.MileageRecord, error) {
	var out []model.MileageRecord
	for _, m := range r.mileage {
		if m.TS >= fromMs && m.TS < toMs {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCostRepo) CreateExpense(_ context.Context, e model.ExpenseRecord) error {
	r.expenses = append(r.expenses, e)
	return nil
}

func (r *fakeCostRepo) ListExpenses(_ context.Context, fromMs, toMs int64) ([]model.ExpenseRecord, error) {
	var out []model.ExpenseRecord
	for _, e := range r.expenses {
		if e.TS >= fromMs && e.TS < toMs {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePayrollRepo struct {
	mu            sync.Mutex
	periods       map[string]model.PayrollPeriod
	confirmations []model.PayrollConfirmation
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{periods: map[string]model.PayrollPeriod{}}
}

func (r *fakePayrollRepo) GetPeriod(_ context.Context, id string) (*model.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakePayrollRepo) SavePeriod(_ context.Context, p model.PayrollPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[p.ID] = p
	return nil
}

func (r *fakePayrollRepo) DeletePeriod(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.periods[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.periods, id)
	return nil
}

func (r *fakePayrollRepo) ListPeriods(context.Context) ([]model.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PayrollPeriod, 0, len(r.periods))
	for _, p := range r.periods {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePayrollRepo) AddConfirmation(_ context.Context, c model.PayrollConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmations = append(r.confirmations, c)
	return nil
}

func (r *fakePayrollRepo) ListConfirmations(_ context.Context, periodID string) ([]model.PayrollConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PayrollConfirmation
	for _, c := range r.confirmations {
		if c.PeriodID == periodID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakePayrollRepo) UpdateEmailStatus(_ context.Context, id string, status model.NotifyStatus, retryCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.EmailStatus = status
	p.EmailRetryCount = retryCount
	r.periods[id] = p
	return nil
}

func (r *fakePayrollRepo) UpdateExportStatus(_ context.Context, id string, status model.NotifyStatus, retryCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.ExportStatus = status
	p.ExportRetry = retryCount
	r.periods[id] = p
	return nil
}

type fakeProducer struct {
	payslip []interface{}
	export  []interface{}
}

func (p *fakeProducer) PublishPayslip(_ context.Context, body interface{}) error {
	p.payslip = append(p.payslip, body)
	return nil
}

func (p *fakeProducer) PublishExport(_ context.Context, body interface{}) error {
	p.export = append(p.export, body)
	return nil
}
