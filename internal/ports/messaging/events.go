package messaging

import "time"

// PeriodFinalizedEvent is the JSON payload sent via SQS when a payroll
// period is finalized and employees should be asked to confirm their pay.
type PeriodFinalizedEvent struct {
	PeriodID   string    `json:"periodId"`
	Revision   int       `json:"revision"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PeriodPaidEvent is the JSON payload sent via SQS when a locked period is
// marked paid: payslips go out and the period is exported to accounting.
type PeriodPaidEvent struct {
	PeriodID   string    `json:"periodId"`
	Revision   int       `json:"revision"`
	OccurredAt time.Time `json:"occurredAt"`
}
