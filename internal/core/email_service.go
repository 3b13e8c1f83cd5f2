package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timecard.service/internal/core/model"
)

type EmailService interface {
	SendConfirmRequest(ctx context.Context, to string, item model.PayrollLineItem, periodID string) error
	SendPayslip(ctx context.Context, to string, item model.PayrollLineItem, periodID string) error
}

type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

// SendConfirmRequest asks an employee to check and confirm their pay for a
// finalized period.
func (s *SESEmailService) SendConfirmRequest(ctx context.Context, to string, item model.PayrollLineItem, periodID string) error {
	subject := fmt.Sprintf("Please confirm your pay for %s", periodID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour pay for period %s is ready for review:\n\n  Regular minutes: %.0f\n  Bonus minutes: %.0f\n  Flat bonuses: %.2f\n  Gross: %.2f\n  Deductions: %.2f\n  Net: %.2f\n\nPlease confirm in the app. If anything changes after you confirm, you will be asked to confirm again.",
		item.Employee, periodID, item.RegularMinutes, item.BonusMinutes, item.FlatBonus, item.Gross, item.Deductions, item.Net,
	)
	return s.send(ctx, to, subject, body, periodID)
}

// SendPayslip sends the final payslip summary once a period is paid.
func (s *SESEmailService) SendPayslip(ctx context.Context, to string, item model.PayrollLineItem, periodID string) error {
	subject := fmt.Sprintf("Payslip for %s", periodID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour pay for period %s has been paid out.\n\n  Gross: %.2f\n  Deductions: %.2f\n  Net: %.2f\n\nThank you for your work.",
		item.Employee, periodID, item.Gross, item.Deductions, item.Net,
	)
	return s.send(ctx, to, subject, body, periodID)
}

func (s *SESEmailService) send(ctx context.Context, to, subject, body, periodID string) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("app.periodId", periodID))

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
