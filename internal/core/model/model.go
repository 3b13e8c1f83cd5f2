package model

import (
	"time"
)

// ClockAction says which direction a clock event goes.
type ClockAction string

const (
	ActionIn  ClockAction = "in"
	ActionOut ClockAction = "out"
)

// Entry is one observed clock action. Timestamps are epoch milliseconds to
// match the wire format of the clock terminals.
type Entry struct {
	ID         string      `json:"id"`
	Employee   string      `json:"employee"`
	EmployeeID string      `json:"employeeId"`
	Action     ClockAction `json:"action"`
	TS         int64       `json:"ts"`
	Site       string      `json:"site,omitempty"`
	Lat        *float64    `json:"lat,omitempty"`
	Lng        *float64    `json:"lng,omitempty"`
	Note       string      `json:"note,omitempty"`
}

// Time converts the entry's epoch-millisecond timestamp to a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.TS).UTC()
}

// Session pairs an in-entry with at most one out-entry for one employee.
// Sessions are derived on every read and never persisted.
type Session struct {
	Employee   string `json:"employee"`
	EmployeeID string `json:"employeeId"`
	Site       string `json:"site,omitempty"`
	In         *Entry `json:"in,omitempty"`
	Out        *Entry `json:"out,omitempty"`
	// Minutes is the elapsed working time. For an active session it is
	// measured against the "now" the reconstruction ran with.
	Minutes float64 `json:"minutes"`
	Active  bool    `json:"active"`
}

// Start returns the session's starting timestamp in epoch milliseconds,
// falling back to the out-entry for orphan sessions.
func (s Session) Start() int64 {
	if s.In != nil {
		return s.In.TS
	}
	if s.Out != nil {
		return s.Out.TS
	}
	return 0
}

// BonusType selects how a site pays bonuses on top of the base rate.
type BonusType string

const (
	BonusNone   BonusType = ""
	BonusHourly BonusType = "hourly"
	BonusFlat   BonusType = "flat"
)

// SiteConfig is the billing and bonus configuration for one client site.
type SiteConfig struct {
	ServicePrice float64   `json:"servicePrice"`
	BonusType    BonusType `json:"bonusType,omitempty"`
	BonusAmount  float64   `json:"bonusAmount,omitempty"`
}

// Settings is the explicit configuration the reporting and payroll code
// reads. It is passed in by callers, never held as ambient state.
type Settings struct {
	WeekStartsOn int                   `json:"weekStartsOn"`
	MileageRate  float64               `json:"mileageRate"`
	Sites        map[string]SiteConfig `json:"sites"`
	// HourlyRates maps employeeId to the base hourly pay rate.
	HourlyRates map[string]float64 `json:"hourlyRates"`
}

// MileageRecord is one reimbursable trip, normalized to a single canonical
// Site field at ingestion.
type MileageRecord struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Site       string  `json:"site,omitempty"`
	Km         float64 `json:"km"`
	TS         int64   `json:"ts"`
	Note       string  `json:"note,omitempty"`
}

// ExpenseRecord is one out-of-pocket cost attributed to a site.
type ExpenseRecord struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Site       string  `json:"site,omitempty"`
	Amount     float64 `json:"amount"`
	TS         int64   `json:"ts"`
	Note       string  `json:"note,omitempty"`
}

// PeriodStatus is the lifecycle state of a payroll period.
type PeriodStatus string

const (
	PeriodDraft  PeriodStatus = "draft"
	PeriodFinal  PeriodStatus = "final"
	PeriodLocked PeriodStatus = "locked"
	PeriodPaid   PeriodStatus = "paid"
)

// NotifyStatus tracks asynchronous side effects (payslip emails, accounting
// export) driven by the workers.
type NotifyStatus string

const (
	StatusNotifyPending    NotifyStatus = "PENDING"
	StatusNotifyProcessing NotifyStatus = "PROCESSING"
	StatusNotifyCompleted  NotifyStatus = "COMPLETED"
	StatusNotifyFailed     NotifyStatus = "FAILED"
)

// PayrollLineItem is one employee's computed pay within a period. Revision
// is bumped on every manager edit while the period is final; a confirmation
// only counts if its revision matches.
type PayrollLineItem struct {
	EmployeeID     string  `json:"employeeId"`
	Employee       string  `json:"employee"`
	RegularMinutes float64 `json:"regularMinutes"`
	BonusMinutes   float64 `json:"bonusMinutes"`
	FlatBonus      float64 `json:"flatBonus"`
	Gross          float64 `json:"gross"`
	Deductions     float64 `json:"deductions"`
	Net            float64 `json:"net"`
	Revision       int     `json:"revision"`
}

// PayrollPeriod is a date-bounded payroll computation for all employees.
// It is persisted as a whole document keyed by ID ("YYYY-MM-DD_YYYY-MM-DD");
// writers always overwrite the full object.
type PayrollPeriod struct {
	ID       string            `json:"id"`
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Status   PeriodStatus      `json:"status"`
	Revision int               `json:"revision"`
	Items    []PayrollLineItem `json:"items"`

	EmailStatus     NotifyStatus `json:"emailStatus,omitempty"`
	EmailRetryCount int          `json:"emailRetryCount,omitempty"`
	ExportStatus    NotifyStatus `json:"exportStatus,omitempty"`
	ExportRetry     int          `json:"exportRetryCount,omitempty"`
}

// PeriodID derives the persistence key from the period bounds.
func PeriodID(from, to time.Time) string {
	return from.Format("2006-01-02") + "_" + to.Format("2006-01-02")
}

// Item returns a pointer to the line item for employeeID, or nil.
func (p *PayrollPeriod) Item(employeeID string) *PayrollLineItem {
	for i := range p.Items {
		if p.Items[i].EmployeeID == employeeID {
			return &p.Items[i]
		}
	}
	return nil
}

// PayrollConfirmation is an employee's attestation that a specific revision
// of their line item is correct. Edits bump the item revision and silently
// invalidate older confirmations.
type PayrollConfirmation struct {
	PeriodID    string    `json:"periodId"`
	EmployeeID  string    `json:"employeeId"`
	Revision    int       `json:"revision"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// ProfitabilityRow is one site's money view for a window: what the client
// pays against what the site cost in labor, mileage and expenses.
type ProfitabilityRow struct {
	Site        string  `json:"site"`
	Visits      int     `json:"visits"`
	Minutes     float64 `json:"minutes"`
	Revenue     float64 `json:"revenue"`
	LaborCost   float64 `json:"laborCost"`
	MileageCost float64 `json:"mileageCost"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
}
