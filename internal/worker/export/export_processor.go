package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/messaging"
	"timecard.service/internal/ports/repository"
	"timecard.service/internal/worker"
	"timecard.service/internal/worker/accounting"
)

// ExportProcessor handles jobs from the export queue, which involves calling
// the accounting API. It uses a circuit breaker to avoid hammering the
// accounting system if it's having issues.
type ExportProcessor struct {
	Repo       repository.PayrollRepository
	accounting accounting.Client
	cb         *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the export queue. It sets up a
// circuit breaker to protect the accounting API from being overwhelmed.
func NewProcessor(r repository.PayrollRepository, client accounting.Client) *ExportProcessor {
	settings := gobreaker.Settings{
		Name:        "Accounting-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &ExportProcessor{
		Repo:       r,
		accounting: client,
		cb:         gobreaker.NewCircuitBreaker(settings),
	}
}

// Process is the core logic for handling a message from the export queue.
// It calls the accounting API through a circuit breaker and handles retries
// with exponential backoff.
func (p *ExportProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.PeriodPaidEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal export event")
		return false, 0, err // Do not retry on malformed message
	}

	period, err := p.Repo.GetPeriod(ctx, event.PeriodID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get period from db: %w", err)
	}

	if period.ExportStatus == model.StatusNotifyCompleted {
		return false, 0, nil
	}
	if period.Status != model.PeriodPaid {
		// Only paid periods leave the building.
		log.Ctx(ctx).Warn().Str("period_id", event.PeriodID).Str("status", string(period.Status)).Msg("Skipping export of unpaid period")
		return false, 0, nil
	}

	export := accounting.PayoutExport{
		PeriodID: period.ID,
		From:     period.From,
		To:       period.To,
		Revision: period.Revision,
		Items:    period.Items,
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.accounting.RecordPayout(ctx, export)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping accounting API call")
		}
		newCount := period.ExportRetry + 1
		p.Repo.UpdateExportStatus(ctx, event.PeriodID, model.StatusNotifyPending, newCount)

		delay := worker.Backoff(newCount)
		return true, delay, err
	}

	err = p.Repo.UpdateExportStatus(ctx, event.PeriodID, model.StatusNotifyCompleted, 0)
	return false, 0, err
}
