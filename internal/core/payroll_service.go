package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timecard.service/internal/core/model"
	"timecard.service/internal/core/payroll"
	"timecard.service/internal/core/timesheet"
	"timecard.service/internal/ports/messaging"
	"timecard.service/internal/ports/repository"
)

// ErrPeriodExists indicates a draft already covers the requested range.
var ErrPeriodExists = errors.New("payroll period already exists")

// boundaryPad widens entry-log reads around a window so cross-midnight
// shifts keep both punches. No shift runs anywhere near this long.
const boundaryPad = 48 * time.Hour

// PayrollService drives the payroll period lifecycle. Draft periods are
// recomputed from the entry log on every read; finalize snapshots them,
// and the later transitions only move status and publish events for the
// async side effects (confirmation emails, payslips, accounting export).
type PayrollService struct {
	entries  repository.EntryRepository
	settings repository.SettingsRepository
	payroll  repository.PayrollRepository
	producer messaging.EventProducer
	now      func() time.Time
}

// NewPayrollService wires the payroll lifecycle service.
func NewPayrollService(entries repository.EntryRepository, settings repository.SettingsRepository, payrollRepo repository.PayrollRepository, producer messaging.EventProducer) *PayrollService {
	return &PayrollService{
		entries:  entries,
		settings: settings,
		payroll:  payrollRepo,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateDraft opens a new draft period for [from, to).
func (s *PayrollService) CreateDraft(ctx context.Context, from, to time.Time) (*model.PayrollPeriod, error) {
	id := model.PeriodID(from, to)
	if existing, err := s.payroll.GetPeriod(ctx, id); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrPeriodExists, id)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	p := model.PayrollPeriod{
		ID:     id,
		From:   from,
		To:     to,
		Status: model.PeriodDraft,
	}
	if err := s.payroll.SavePeriod(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPeriod returns a period. A draft's line items are computed live from
// the current entry log and are not authoritative until finalized.
func (s *PayrollService) GetPeriod(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PeriodDraft {
		items, err := s.computeItems(ctx, p)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return p, nil
}

// ListPeriods returns all periods as stored.
func (s *PayrollService) ListPeriods(ctx context.Context) ([]model.PayrollPeriod, error) {
	return s.payroll.ListPeriods(ctx)
}

// Finalize snapshots the draft's live computation and asks employees to
// confirm their line items.
func (s *PayrollService) Finalize(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.computeItems(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := payroll.Finalize(p, items); err != nil {
		return nil, err
	}
	if err := s.payroll.SavePeriod(ctx, *p); err != nil {
		return nil, err
	}

	event := messaging.PeriodFinalizedEvent{
		PeriodID:   p.ID,
		Revision:   p.Revision,
		OccurredAt: s.now(),
	}
	if err := s.producer.PublishPayslip(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish finalize event: %w", err)
	}
	return p, nil
}

// Lock moves a fully confirmed final period to locked. A single missing or
// stale confirmation rejects the whole transition; nothing is partially
// applied.
func (s *PayrollService) Lock(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	confirmations, err := s.payroll.ListConfirmations(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payroll.Lock(p, confirmations); err != nil {
		return nil, err
	}
	if err := s.payroll.SavePeriod(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaid closes out a locked period and triggers payslip emails plus the
// accounting export.
func (s *PayrollService) MarkPaid(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payroll.MarkPaid(p); err != nil {
		return nil, err
	}
	if err := s.payroll.SavePeriod(ctx, *p); err != nil {
		return nil, err
	}

	event := messaging.PeriodPaidEvent{
		PeriodID:   p.ID,
		Revision:   p.Revision,
		OccurredAt: s.now(),
	}
	if err := s.producer.PublishPayslip(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish paid event: %w", err)
	}
	if err := s.producer.PublishExport(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish export event: %w", err)
	}
	return p, nil
}

// Reopen drops a final or locked period back to draft, discarding the
// snapshot.
func (s *PayrollService) Reopen(ctx context.Context, id string) (*model.PayrollPeriod, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payroll.Reopen(p); err != nil {
		return nil, err
	}
	if err := s.payroll.SavePeriod(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePeriod removes a draft period.
func (s *PayrollService) DeletePeriod(ctx context.Context, id string) error {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return err
	}
	if err := payroll.CanDelete(p); err != nil {
		return err
	}
	return s.payroll.DeletePeriod(ctx, id)
}

// EditItem applies a manager edit to one finalized line item. The edit bumps
// only that item's revision, invalidating the employee's confirmation.
func (s *PayrollService) EditItem(ctx context.Context, id, employeeID string, edit payroll.ItemEdit) (*model.PayrollPeriod, []payroll.FieldChange, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	changes, err := payroll.ApplyItemEdit(p, employeeID, edit)
	if err != nil {
		return nil, nil, err
	}
	if len(changes) == 0 {
		return p, nil, nil
	}
	if err := s.payroll.SavePeriod(ctx, *p); err != nil {
		return nil, nil, err
	}
	return p, changes, nil
}

// Confirm records an employee's attestation of their current line item
// revision.
func (s *PayrollService) Confirm(ctx context.Context, id, employeeID string) (*model.PayrollConfirmation, error) {
	p, err := s.payroll.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := payroll.Confirm(p, employeeID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.payroll.AddConfirmation(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// computeItems rebuilds sessions from the entry log and folds them into
// line items for the period window. Manager deductions already on the
// period survive the recompute.
func (s *PayrollService) computeItems(ctx context.Context, p *model.PayrollPeriod) ([]model.PayrollLineItem, error) {
	// Fetch a padded window so a shift straddling the period boundary still
	// finds both its punches; the fold clamps minutes to the period anyway.
	entries, err := s.entries.ListEntries(ctx, p.From.Add(-boundaryPad).UnixMilli(), p.To.Add(boundaryPad).UnixMilli())
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sessions := timesheet.BuildSessions(entries, now)

	deductions := map[string]float64{}
	for _, item := range p.Items {
		if item.Deductions != 0 {
			deductions[item.EmployeeID] = item.Deductions
		}
	}
	return payroll.ComputeLineItems(sessions, settings, p.From, p.To, now, deductions), nil
}
