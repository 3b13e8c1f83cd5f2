package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"timecard.service/internal/core/model"
)

// PayoutExport is the payload the accounting system expects for one paid
// payroll period.
type PayoutExport struct {
	PeriodID string                  `json:"periodId"`
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Revision int                     `json:"revision"`
	Items    []model.PayrollLineItem `json:"items"`
}

// Client contract for the accounting export
type Client interface {
	RecordPayout(ctx context.Context, export PayoutExport) error
}

// HTTPClient API client using HTTP
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient new HTTPClient
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// RecordPayout sends the paid period to the accounting API
func (c *HTTPClient) RecordPayout(ctx context.Context, export PayoutExport) error {
	payload, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal accounting payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create accounting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call accounting api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("accounting api returned non-successful status code: %d", resp.StatusCode)
	}

	log.Ctx(ctx).Info().Str("period_id", export.PeriodID).Msg("Recorded payout in accounting system")
	return nil
}
