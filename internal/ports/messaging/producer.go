package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender          MessageSender
	payslipQueueURL string
	exportQueueURL  string
}

func NewProducer(sender MessageSender, payslipQueueURL, exportQueueURL string) *Producer {
	return &Producer{
		sender:          sender,
		payslipQueueURL: payslipQueueURL,
		exportQueueURL:  exportQueueURL,
	}
}

func NewSQSProducer(client SQSClient, payslipQueueURL, exportQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, payslipQueueURL, exportQueueURL)
}

func (p *Producer) PublishPayslip(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.payslipQueueURL, body)
}

func (p *Producer) PublishExport(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.exportQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with the period id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			PeriodID string `json:"periodId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.PeriodID != "" {
			span.SetAttributes(attribute.String("app.periodId", payload.PeriodID))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
