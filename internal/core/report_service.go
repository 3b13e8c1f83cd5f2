package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"timecard.service/internal/core/model"
	"timecard.service/internal/core/payroll"
	"timecard.service/internal/core/timesheet"
	"timecard.service/internal/ports/repository"
)

// ReportService answers the read-side questions: reconstructed sessions,
// hour totals over windows, per-day site summaries and site profitability.
// Everything is recomputed from the entry log on each call; at the data
// volumes involved that is cheaper than keeping incremental state correct.
type ReportService struct {
	entries  repository.EntryRepository
	costs    repository.CostRepository
	settings repository.SettingsRepository
	now      func() time.Time
}

// NewReportService wires the read-side reporting service.
func NewReportService(entries repository.EntryRepository, costs repository.CostRepository, settings repository.SettingsRepository) *ReportService {
	return &ReportService{
		entries:  entries,
		costs:    costs,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sessions rebuilds sessions whose span touches [from, to).
func (s *ReportService) Sessions(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	sessions, _, err := s.loadSessions(ctx, from, to)
	return sessions, err
}

// WindowMinutes totals minutes per employee and site inside [from, to).
func (s *ReportService) WindowMinutes(ctx context.Context, from, to time.Time) (map[string]map[string]float64, error) {
	sessions, now, err := s.loadSessions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return timesheet.EmployeeMinutes(sessions, from, to, now), nil
}

// DailySiteMinutes buckets minutes by day and site for [from, to).
func (s *ReportService) DailySiteMinutes(ctx context.Context, from, to time.Time) (map[string]map[string]float64, error) {
	sessions, now, err := s.loadSessions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return timesheet.DailySiteMinutes(sessions, from, to, now, time.UTC), nil
}

// Profitability produces the per-site money rows for [from, to).
func (s *ReportService) Profitability(ctx context.Context, from, to time.Time) ([]model.ProfitabilityRow, error) {
	sessions, now, err := s.loadSessions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	mileage, err := s.costs.ListMileage(ctx, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	expenses, err := s.costs.ListExpenses(ctx, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	return payroll.Profitability(sessions, mileage, expenses, settings, from, to, now), nil
}

// WritePeriodCSV renders a payroll period's line items as CSV.
func (s *ReportService) WritePeriodCSV(w io.Writer, p model.PayrollPeriod) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee_id", "employee", "regular_minutes", "bonus_minutes", "flat_bonus", "gross", "deductions", "net", "revision"}); err != nil {
		return err
	}
	for _, item := range p.Items {
		record := []string{
			item.EmployeeID,
			item.Employee,
			formatAmount(item.RegularMinutes),
			formatAmount(item.BonusMinutes),
			formatAmount(item.FlatBonus),
			formatAmount(item.Gross),
			formatAmount(item.Deductions),
			formatAmount(item.Net),
			strconv.Itoa(item.Revision),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write period csv: %w", err)
	}
	return nil
}

func (s *ReportService) loadSessions(ctx context.Context, from, to time.Time) ([]model.Session, time.Time, error) {
	entries, err := s.entries.ListEntries(ctx, from.Add(-boundaryPad).UnixMilli(), to.Add(boundaryPad).UnixMilli())
	if err != nil {
		return nil, time.Time{}, err
	}
	now := s.now()
	return timesheet.BuildSessions(entries, now), now, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
