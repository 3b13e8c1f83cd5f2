package timesheet

import (
	"time"

	"timecard.service/internal/core/model"
)

// MinutesInWindow sums session minutes that overlap [from, to). Sessions
// straddling a window edge count proportionally to their overlap, so summing
// adjacent windows equals summing their union. Active sessions run until
// now. Sessions without a usable start contribute nothing; this is reporting
// code, so bad data degrades to zero instead of failing the whole report.
func MinutesInWindow(sessions []model.Session, from, to, now time.Time) float64 {
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	var total float64
	for _, s := range sessions {
		total += overlapMinutes(s, fromMs, toMs, now)
	}
	return total
}

// DailySiteMinutes buckets session minutes inside [from, to) by calendar day
// and site. A session belongs to the day it started on (shift-night
// reporting keeps a cross-midnight shift on its starting day), while the
// minutes credited are still clamped to the window.
func DailySiteMinutes(sessions []model.Session, from, to, now time.Time, loc *time.Location) map[string]map[string]float64 {
	if loc == nil {
		loc = time.UTC
	}
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	out := map[string]map[string]float64{}
	for _, s := range sessions {
		minutes := overlapMinutes(s, fromMs, toMs, now)
		if minutes <= 0 {
			continue
		}
		day := time.UnixMilli(s.Start()).In(loc).Format("2006-01-02")
		if out[day] == nil {
			out[day] = map[string]float64{}
		}
		out[day][s.Site] += minutes
	}
	return out
}

// EmployeeMinutes totals window minutes per employee, split by site. This is
// the input shape the payroll fold consumes.
func EmployeeMinutes(sessions []model.Session, from, to, now time.Time) map[string]map[string]float64 {
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	out := map[string]map[string]float64{}
	for _, s := range sessions {
		minutes := overlapMinutes(s, fromMs, toMs, now)
		if minutes <= 0 {
			continue
		}
		if out[s.EmployeeID] == nil {
			out[s.EmployeeID] = map[string]float64{}
		}
		out[s.EmployeeID][s.Site] += minutes
	}
	return out
}

// WeekBounds returns the [start, end) of the week containing t, where
// weekStartsOn is 0 (Sunday) through 6 (Saturday).
func WeekBounds(t time.Time, weekStartsOn int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	if weekStartsOn < 0 || weekStartsOn > 6 {
		weekStartsOn = 0
	}
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	back := (int(day.Weekday()) - weekStartsOn + 7) % 7
	start := day.AddDate(0, 0, -back)
	return start, start.AddDate(0, 0, 7)
}

// MonthBounds returns the [start, end) of the calendar month containing t.
func MonthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// SessionMinutesInWindow returns one session's overlap with [from, to) in
// minutes, with the same clamping rules as MinutesInWindow.
func SessionMinutesInWindow(s model.Session, from, to, now time.Time) float64 {
	return overlapMinutes(s, from.UnixMilli(), to.UnixMilli(), now)
}

// overlapMinutes clamps a session's (start, end|now) to [fromMs, toMs) and
// returns the positive overlap in minutes.
func overlapMinutes(s model.Session, fromMs, toMs int64, now time.Time) float64 {
	if s.In == nil {
		// Orphan "out" sessions have no measurable span.
		return 0
	}
	start := s.In.TS
	end := start
	switch {
	case s.Out != nil:
		end = s.Out.TS
	case s.Active:
		end = now.UnixMilli()
	}
	if end < start {
		end = start
	}
	if start < fromMs {
		start = fromMs
	}
	if end > toMs {
		end = toMs
	}
	return clampedMinutes(start, end)
}
