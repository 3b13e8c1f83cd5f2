package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecard.service/internal/core/model"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func session(employeeID, site string, start, end time.Time) model.Session {
	in := model.Entry{ID: "in-" + employeeID + "-" + site, Employee: "Employee " + employeeID, EmployeeID: employeeID, Action: model.ActionIn, TS: start.UnixMilli(), Site: site}
	out := model.Entry{ID: "out-" + employeeID + "-" + site, EmployeeID: employeeID, Action: model.ActionOut, TS: end.UnixMilli(), Site: site}
	return model.Session{
		Employee:   in.Employee,
		EmployeeID: employeeID,
		Site:       site,
		In:         &in,
		Out:        &out,
		Minutes:    end.Sub(start).Minutes(),
	}
}

func testSettings() model.Settings {
	return model.Settings{
		WeekStartsOn: 1,
		MileageRate:  0.5,
		Sites: map[string]model.SiteConfig{
			"Alpha": {ServicePrice: 100, BonusType: model.BonusHourly, BonusAmount: 2},
			"Beta":  {ServicePrice: 80, BonusType: model.BonusFlat, BonusAmount: 5},
			"Gamma": {ServicePrice: 60},
		},
		HourlyRates: map[string]float64{"A": 10, "B": 12},
	}
}

func TestComputeLineItemsSplitsBonusAndRegularMinutes(t *testing.T) {
	sessions := []model.Session{
		session("A", "Alpha", base, base.Add(2*time.Hour)),
		session("A", "Gamma", base.Add(3*time.Hour), base.Add(4*time.Hour)),
	}
	now := base.Add(24 * time.Hour)

	items := ComputeLineItems(sessions, testSettings(), base, now, now, nil)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "A", item.EmployeeID)
	assert.Equal(t, 60.0, item.RegularMinutes)
	assert.Equal(t, 120.0, item.BonusMinutes)
	// 3h at base rate 10 plus 2h of hourly bonus 2.
	assert.InDelta(t, 34.0, item.Gross, 1e-9)
	assert.InDelta(t, 34.0, item.Net, 1e-9)
}

func TestComputeLineItemsFlatBonusOncePerSession(t *testing.T) {
	sessions := []model.Session{
		session("A", "Beta", base, base.Add(time.Hour)),
		session("A", "Beta", base.Add(2*time.Hour), base.Add(3*time.Hour)),
	}
	now := base.Add(24 * time.Hour)

	items := ComputeLineItems(sessions, testSettings(), base, now, now, nil)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, 120.0, item.RegularMinutes)
	assert.Equal(t, 10.0, item.FlatBonus)
	// 2h at rate 10 plus two flat visit bonuses of 5.
	assert.InDelta(t, 30.0, item.Gross, 1e-9)
}

func TestComputeLineItemsMissingRatePaysZero(t *testing.T) {
	sessions := []model.Session{
		session("ghost", "Gamma", base, base.Add(90*time.Minute)),
	}
	now := base.Add(24 * time.Hour)

	items := ComputeLineItems(sessions, testSettings(), base, now, now, nil)

	require.Len(t, items, 1)
	assert.Equal(t, 90.0, items[0].RegularMinutes)
	assert.Equal(t, 0.0, items[0].Gross)
}

func TestComputeLineItemsCarriesDeductions(t *testing.T) {
	sessions := []model.Session{
		session("A", "Gamma", base, base.Add(2*time.Hour)),
	}
	now := base.Add(24 * time.Hour)

	items := ComputeLineItems(sessions, testSettings(), base, now, now, map[string]float64{"A": 7.5})

	require.Len(t, items, 1)
	assert.Equal(t, 7.5, items[0].Deductions)
	assert.InDelta(t, 12.5, items[0].Net, 1e-9)
}

func TestComputeLineItemsSortedByEmployeeID(t *testing.T) {
	sessions := []model.Session{
		session("B", "Gamma", base, base.Add(time.Hour)),
		session("A", "Gamma", base, base.Add(time.Hour)),
	}
	now := base.Add(24 * time.Hour)

	items := ComputeLineItems(sessions, testSettings(), base, now, now, nil)

	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].EmployeeID)
	assert.Equal(t, "B", items[1].EmployeeID)
}

func TestProfitabilityPerSite(t *testing.T) {
	sessions := []model.Session{
		session("A", "Alpha", base, base.Add(2*time.Hour)),
		session("B", "Alpha", base.Add(3*time.Hour), base.Add(4*time.Hour)),
	}
	// An active shift has not been delivered, so no revenue yet.
	activeIn := model.Entry{ID: "in-act", EmployeeID: "A", Action: model.ActionIn, TS: base.Add(5 * time.Hour).UnixMilli(), Site: "Alpha"}
	sessions = append(sessions, model.Session{EmployeeID: "A", Site: "Alpha", In: &activeIn, Active: true})

	mileage := []model.MileageRecord{{ID: "m1", EmployeeID: "A", Site: "Alpha", Km: 20, TS: base.UnixMilli()}}
	expenses := []model.ExpenseRecord{{ID: "x1", EmployeeID: "A", Site: "Alpha", Amount: 15, TS: base.UnixMilli()}}
	now := base.Add(6 * time.Hour)

	rows := Profitability(sessions, mileage, expenses, testSettings(), base, now, now)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "Alpha", r.Site)
	assert.Equal(t, 2, r.Visits)
	assert.Equal(t, 200.0, r.Revenue)
	// Labor: A 2h*(10+2) + B 1h*(12+2) + A active 1h*(10+2).
	assert.InDelta(t, 50.0, r.LaborCost, 1e-9)
	assert.InDelta(t, 10.0, r.MileageCost, 1e-9)
	assert.Equal(t, 15.0, r.Expenses)
	assert.InDelta(t, 125.0, r.Profit, 1e-9)
}

func TestProfitabilityFiltersCostsOutsideWindow(t *testing.T) {
	mileage := []model.MileageRecord{
		{ID: "m1", Site: "Alpha", Km: 10, TS: base.UnixMilli()},
		{ID: "m2", Site: "Alpha", Km: 10, TS: base.AddDate(0, 0, -10).UnixMilli()},
	}
	now := base.Add(24 * time.Hour)

	rows := Profitability(nil, mileage, nil, testSettings(), base, now, now)

	require.Len(t, rows, 1)
	assert.InDelta(t, 5.0, rows[0].MileageCost, 1e-9)
}
