package payslip

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"timecard.service/internal/core"
	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/messaging"
	"timecard.service/internal/ports/repository"
	"timecard.service/internal/worker"
)

type PayslipProcessor struct {
	emailService core.EmailService
	repo         repository.PayrollRepository
	emailDomain  string
}

// NewProcessor sets up a new processor for payroll email jobs. What gets
// sent depends on where the period is in its lifecycle: confirmation
// requests while final, payslips once paid.
func NewProcessor(emailService core.EmailService, repo repository.PayrollRepository, emailDomain string) *PayslipProcessor {
	return &PayslipProcessor{
		emailService: emailService,
		repo:         repo,
		emailDomain:  emailDomain,
	}
}

// Process handles one message from the payslip queue. It loads the period
// fresh, so a reopened or re-edited period never gets stale mail, and tells
// the worker to retry with backoff when sending fails.
func (p *PayslipProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.PeriodFinalizedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payroll event")
		return false, 0, err // Do not retry on malformed message
	}

	period, err := p.repo.GetPeriod(ctx, event.PeriodID)
	if err != nil {
		// If we can't get the record, retry after a short delay.
		return true, 10, fmt.Errorf("failed to get period for email processing: %w", err)
	}

	if period.EmailStatus == model.StatusNotifyCompleted {
		log.Ctx(ctx).Info().Str("period_id", event.PeriodID).Msg("Emails already sent. Skipping.")
		return false, 0, nil
	}
	if period.Status == model.PeriodDraft {
		// Reopened between publish and delivery; nothing to send.
		return false, 0, nil
	}

	if err := p.sendAll(ctx, period); err != nil {
		newCount := period.EmailRetryCount + 1
		p.repo.UpdateEmailStatus(ctx, event.PeriodID, model.StatusNotifyPending, newCount)

		delay := worker.Backoff(newCount)
		return true, delay, err
	}

	err = p.repo.UpdateEmailStatus(ctx, event.PeriodID, model.StatusNotifyCompleted, 0)
	return false, 0, err
}

func (p *PayslipProcessor) sendAll(ctx context.Context, period *model.PayrollPeriod) error {
	for _, item := range period.Items {
		to := item.EmployeeID + "@" + p.emailDomain
		var err error
		if period.Status == model.PeriodPaid {
			err = p.emailService.SendPayslip(ctx, to, item, period.ID)
		} else {
			err = p.emailService.SendConfirmRequest(ctx, to, item, period.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to email %s: %w", item.EmployeeID, err)
		}
	}
	return nil
}
