package payroll

import (
	"errors"
	"fmt"
	"time"

	"timecard.service/internal/core/model"
)

var (
	// ErrInvalidTransition indicates a status change the lifecycle does not
	// allow from the period's current state.
	ErrInvalidTransition = errors.New("payroll period transition invalid")
	// ErrUnconfirmedItems indicates a lock attempt while at least one line
	// item lacks a confirmation at its current revision.
	ErrUnconfirmedItems = errors.New("payroll period has unconfirmed line items")
	// ErrItemNotFound indicates an edit or confirmation that names an
	// employee the period has no line item for.
	ErrItemNotFound = errors.New("payroll line item not found")
	// ErrNotDeletable indicates a delete attempt on a non-draft period.
	ErrNotDeletable = errors.New("payroll period can only be deleted while draft")
)

// Finalize snapshots the given line items and moves the period from draft to
// final. The period revision is bumped and every item is stamped with it, so
// confirmations are bound to exactly this snapshot.
func Finalize(p *model.PayrollPeriod, items []model.PayrollLineItem) error {
	if p.Status != model.PeriodDraft {
		return fmt.Errorf("%w: finalize from %q", ErrInvalidTransition, p.Status)
	}
	p.Revision++
	snapshot := make([]model.PayrollLineItem, len(items))
	copy(snapshot, items)
	for i := range snapshot {
		snapshot[i].Revision = p.Revision
	}
	p.Items = snapshot
	p.Status = model.PeriodFinal
	p.EmailStatus = model.StatusNotifyPending
	p.EmailRetryCount = 0
	return nil
}

// Lock moves the period from final to locked. Every line item must carry an
// employee confirmation at its current revision; a stale confirmation (item
// edited after confirming) does not count.
func Lock(p *model.PayrollPeriod, confirmations []model.PayrollConfirmation) error {
	if p.Status != model.PeriodFinal {
		return fmt.Errorf("%w: lock from %q", ErrInvalidTransition, p.Status)
	}
	confirmed := map[string]map[int]bool{}
	for _, c := range confirmations {
		if c.PeriodID != p.ID {
			continue
		}
		if confirmed[c.EmployeeID] == nil {
			confirmed[c.EmployeeID] = map[int]bool{}
		}
		confirmed[c.EmployeeID][c.Revision] = true
	}
	var missing []string
	for _, item := range p.Items {
		if !confirmed[item.EmployeeID][item.Revision] {
			missing = append(missing, item.EmployeeID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnconfirmedItems, missing)
	}
	p.Status = model.PeriodLocked
	return nil
}

// MarkPaid moves the period from locked to paid and arms the payslip email
// and accounting export side effects. Paid is terminal.
func MarkPaid(p *model.PayrollPeriod) error {
	if p.Status != model.PeriodLocked {
		return fmt.Errorf("%w: pay from %q", ErrInvalidTransition, p.Status)
	}
	p.Status = model.PeriodPaid
	p.EmailStatus = model.StatusNotifyPending
	p.EmailRetryCount = 0
	p.ExportStatus = model.StatusNotifyPending
	p.ExportRetry = 0
	return nil
}

// Reopen is the manager override that discards the snapshot and drops the
// period back to draft, where line items are computed live again. Allowed
// from final and locked; a paid period stays paid.
func Reopen(p *model.PayrollPeriod) error {
	if p.Status != model.PeriodFinal && p.Status != model.PeriodLocked {
		return fmt.Errorf("%w: reopen from %q", ErrInvalidTransition, p.Status)
	}
	// Edits may have pushed item revisions past the period revision. Carry
	// the highest one forward so the next finalize stamps revisions no
	// discarded confirmation can ever equal.
	for _, item := range p.Items {
		if item.Revision > p.Revision {
			p.Revision = item.Revision
		}
	}
	p.Status = model.PeriodDraft
	p.Items = nil
	p.EmailStatus = ""
	p.EmailRetryCount = 0
	return nil
}

// CanDelete reports whether the period may be deleted.
func CanDelete(p *model.PayrollPeriod) error {
	if p.Status != model.PeriodDraft {
		return fmt.Errorf("%w: status %q", ErrNotDeletable, p.Status)
	}
	return nil
}

// ItemEdit is a manager correction to one employee's finalized line item.
// Nil fields are left untouched.
type ItemEdit struct {
	BonusMinutes *float64
	FlatBonus    *float64
	Deductions   *float64
}

// ApplyItemEdit applies a manager edit to one line item of a final period.
// Any actual change bumps only that item's revision, which silently
// invalidates the employee's earlier confirmation while leaving everyone
// else's intact. The returned diff lists exactly what changed.
func ApplyItemEdit(p *model.PayrollPeriod, employeeID string, edit ItemEdit) ([]FieldChange, error) {
	if p.Status != model.PeriodFinal {
		return nil, fmt.Errorf("%w: edit items in %q", ErrInvalidTransition, p.Status)
	}
	item := p.Item(employeeID)
	if item == nil {
		return nil, fmt.Errorf("%w: employee %s in period %s", ErrItemNotFound, employeeID, p.ID)
	}

	updated := *item
	if edit.BonusMinutes != nil {
		updated.BonusMinutes = *edit.BonusMinutes
	}
	if edit.FlatBonus != nil {
		updated.FlatBonus = *edit.FlatBonus
	}
	if edit.Deductions != nil {
		updated.Deductions = *edit.Deductions
	}
	updated.Net = updated.Gross - updated.Deductions

	changes := DiffLineItems(*item, updated)
	if len(changes) == 0 {
		return nil, nil
	}
	updated.Revision = item.Revision + 1
	*item = updated
	return changes, nil
}

// Confirm records that an employee accepts their line item as it currently
// stands. The confirmation is bound to the item's present revision.
func Confirm(p *model.PayrollPeriod, employeeID string, at time.Time) (model.PayrollConfirmation, error) {
	if p.Status != model.PeriodFinal {
		return model.PayrollConfirmation{}, fmt.Errorf("%w: confirm in %q", ErrInvalidTransition, p.Status)
	}
	item := p.Item(employeeID)
	if item == nil {
		return model.PayrollConfirmation{}, fmt.Errorf("%w: employee %s in period %s", ErrItemNotFound, employeeID, p.ID)
	}
	return model.PayrollConfirmation{
		PeriodID:    p.ID,
		EmployeeID:  employeeID,
		Revision:    item.Revision,
		ConfirmedAt: at,
	}, nil
}
