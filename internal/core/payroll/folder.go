// Package payroll turns aggregated working time into pay, and manages the
// payroll period lifecycle (draft, final, locked, paid) with per-item
// revisions and employee confirmations.
package payroll

import (
	"sort"
	"time"

	"timecard.service/internal/core/model"
	"timecard.service/internal/core/timesheet"
)

// ComputeLineItems folds the period's sessions into one line item per
// employee. Minutes worked at a site with an hourly bonus are bonus minutes,
// paid at the base rate plus the site's bonus amount; a flat-bonus site adds
// its amount once per session. An employee with no configured rate still
// gets their minutes recorded, just with zero pay — missing configuration
// degrades, it does not error.
//
// deductions carries manager-entered deductions by employee so that a
// recompute does not wipe them.
func ComputeLineItems(sessions []model.Session, settings model.Settings, from, to, now time.Time, deductions map[string]float64) []model.PayrollLineItem {
	type acc struct {
		employee  string
		regular   float64
		bonus     float64
		bonusPay  float64
		flatBonus float64
	}
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	byEmployee := map[string]*acc{}

	for _, s := range sessions {
		minutes := sessionOverlap(s, fromMs, toMs, now)
		if minutes <= 0 {
			continue
		}
		a := byEmployee[s.EmployeeID]
		if a == nil {
			a = &acc{employee: s.Employee}
			byEmployee[s.EmployeeID] = a
		}
		if a.employee == "" {
			a.employee = s.Employee
		}
		site := settings.Sites[s.Site]
		switch site.BonusType {
		case model.BonusHourly:
			a.bonus += minutes
			a.bonusPay += minutes / 60 * site.BonusAmount
		case model.BonusFlat:
			a.regular += minutes
			a.flatBonus += site.BonusAmount
		default:
			a.regular += minutes
		}
	}

	items := make([]model.PayrollLineItem, 0, len(byEmployee))
	for employeeID, a := range byEmployee {
		rate := settings.HourlyRates[employeeID]
		// Bonus minutes pay the base rate plus the site's hourly bonus.
		gross := (a.regular+a.bonus)/60*rate + a.bonusPay + a.flatBonus
		item := model.PayrollLineItem{
			EmployeeID:     employeeID,
			Employee:       a.employee,
			RegularMinutes: a.regular,
			BonusMinutes:   a.bonus,
			FlatBonus:      a.flatBonus,
			Gross:          gross,
			Deductions:     deductions[employeeID],
		}
		item.Net = item.Gross - item.Deductions
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].EmployeeID < items[j].EmployeeID })
	return items
}

// Profitability produces one money row per site for the window: service
// revenue per completed visit against labor, mileage and expense costs.
func Profitability(sessions []model.Session, mileage []model.MileageRecord, expenses []model.ExpenseRecord, settings model.Settings, from, to, now time.Time) []model.ProfitabilityRow {
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	bySite := map[string]*model.ProfitabilityRow{}
	row := func(site string) *model.ProfitabilityRow {
		r := bySite[site]
		if r == nil {
			r = &model.ProfitabilityRow{Site: site}
			bySite[site] = r
		}
		return r
	}

	for _, s := range sessions {
		minutes := sessionOverlap(s, fromMs, toMs, now)
		if minutes <= 0 {
			continue
		}
		r := row(s.Site)
		r.Minutes += minutes
		cfg := settings.Sites[s.Site]
		rate := settings.HourlyRates[s.EmployeeID]
		cost := minutes / 60 * rate
		switch cfg.BonusType {
		case model.BonusHourly:
			cost += minutes / 60 * cfg.BonusAmount
		case model.BonusFlat:
			cost += cfg.BonusAmount
		}
		r.LaborCost += cost
		// A visit is a completed session; active shifts have not been
		// delivered yet and bill on the next run.
		if !s.Active && s.In != nil {
			r.Visits++
			r.Revenue += cfg.ServicePrice
		}
	}

	for _, m := range mileage {
		if m.TS < fromMs || m.TS >= toMs {
			continue
		}
		row(m.Site).MileageCost += m.Km * settings.MileageRate
	}
	for _, e := range expenses {
		if e.TS < fromMs || e.TS >= toMs {
			continue
		}
		row(e.Site).Expenses += e.Amount
	}

	rows := make([]model.ProfitabilityRow, 0, len(bySite))
	for _, r := range bySite {
		r.Profit = r.Revenue - r.LaborCost - r.MileageCost - r.Expenses
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Site < rows[j].Site })
	return rows
}

func sessionOverlap(s model.Session, fromMs, toMs int64, now time.Time) float64 {
	return timesheet.SessionMinutesInWindow(s, time.UnixMilli(fromMs), time.UnixMilli(toMs), now)
}
