package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/messaging"
	"timecard.service/internal/ports/repository"
	"timecard.service/internal/worker/accounting"
)

type fakeAccounting struct {
	payouts []accounting.PayoutExport
	fail    bool
}

func (f *fakeAccounting) RecordPayout(_ context.Context, export accounting.PayoutExport) error {
	if f.fail {
		return errors.New("accounting api down")
	}
	f.payouts = append(f.payouts, export)
	return nil
}

type fakePeriodStore struct {
	period       *model.PayrollPeriod
	exportStatus model.NotifyStatus
	retryCount   int
}

func (s *fakePeriodStore) GetPeriod(_ context.Context, id string) (*model.PayrollPeriod, error) {
	if s.period == nil || s.period.ID != id {
		return nil, repository.ErrNotFound
	}
	copied := *s.period
	return &copied, nil
}

func (s *fakePeriodStore) SavePeriod(context.Context, model.PayrollPeriod) error { return nil }
func (s *fakePeriodStore) DeletePeriod(context.Context, string) error            { return nil }
func (s *fakePeriodStore) ListPeriods(context.Context) ([]model.PayrollPeriod, error) {
	return nil, nil
}
func (s *fakePeriodStore) AddConfirmation(context.Context, model.PayrollConfirmation) error {
	return nil
}
func (s *fakePeriodStore) ListConfirmations(context.Context, string) ([]model.PayrollConfirmation, error) {
	return nil, nil
}
func (s *fakePeriodStore) UpdateEmailStatus(context.Context, string, model.NotifyStatus, int) error {
	return nil
}

func (s *fakePeriodStore) UpdateExportStatus(_ context.Context, _ string, status model.NotifyStatus, retryCount int) error {
	s.exportStatus = status
	s.retryCount = retryCount
	return nil
}

func paidPeriod() *model.PayrollPeriod {
	return &model.PayrollPeriod{
		ID:       "2026-03-01_2026-03-15",
		From:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:   model.PeriodPaid,
		Revision: 1,
		Items: []model.PayrollLineItem{
			{EmployeeID: "A", Net: 100, Revision: 1},
		},
		ExportStatus: model.StatusNotifyPending,
	}
}

func paidMessage(t *testing.T, periodID string) types.Message {
	t.Helper()
	body, err := json.Marshal(messaging.PeriodPaidEvent{PeriodID: periodID, Revision: 1, OccurredAt: time.Now().UTC()})
	require.NoError(t, err)
	return types.Message{Body: aws.String(string(body))}
}

func TestProcessExportsPaidPeriod(t *testing.T) {
	client := &fakeAccounting{}
	store := &fakePeriodStore{period: paidPeriod()}
	proc := NewProcessor(store, client)

	retry, _, err := proc.Process(context.Background(), paidMessage(t, store.period.ID))

	require.NoError(t, err)
	assert.False(t, retry)
	require.Len(t, client.payouts, 1)
	assert.Equal(t, store.period.ID, client.payouts[0].PeriodID)
	assert.Equal(t, 1, client.payouts[0].Revision)
	assert.Equal(t, model.StatusNotifyCompleted, store.exportStatus)
}

func TestProcessSkipsUnpaidPeriod(t *testing.T) {
	client := &fakeAccounting{}
	period := paidPeriod()
	period.Status = model.PeriodLocked
	proc := NewProcessor(&fakePeriodStore{period: period}, client)

	retry, _, err := proc.Process(context.Background(), paidMessage(t, period.ID))

	require.NoError(t, err)
	assert.False(t, retry)
	assert.Empty(t, client.payouts)
}

func TestProcessSkipsAlreadyExported(t *testing.T) {
	client := &fakeAccounting{}
	period := paidPeriod()
	period.ExportStatus = model.StatusNotifyCompleted
	proc := NewProcessor(&fakePeriodStore{period: period}, client)

	retry, _, err := proc.Process(context.Background(), paidMessage(t, period.ID))

	require.NoError(t, err)
	assert.False(t, retry)
	assert.Empty(t, client.payouts)
}

func TestProcessRetriesOnAccountingFailure(t *testing.T) {
	client := &fakeAccounting{fail: true}
	store := &fakePeriodStore{period: paidPeriod()}
	proc := NewProcessor(store, client)

	retry, delay, err := proc.Process(context.Background(), paidMessage(t, store.period.ID))

	require.Error(t, err)
	assert.True(t, retry)
	assert.Equal(t, int32(20), delay)
	assert.Equal(t, 1, store.retryCount)
}

func TestProcessDropsMalformedMessage(t *testing.T) {
	proc := NewProcessor(&fakePeriodStore{}, &fakeAccounting{})

	retry, _, err := proc.Process(context.Background(), types.Message{Body: aws.String("{oops")})

	require.Error(t, err)
	assert.False(t, retry)
}
