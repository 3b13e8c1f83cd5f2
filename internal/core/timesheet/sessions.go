// Package timesheet rebuilds working sessions from the raw clock entry log
// and aggregates them over reporting windows. Everything here is pure
// computation over in-memory data; persistence and transport live elsewhere.
package timesheet

import (
	"sort"
	"time"

	"timecard.service/internal/core/model"
)

const msPerMinute = 60_000.0

// BuildSessions pairs clock entries into sessions. The entry log may arrive
// in any order (concurrent writers, manager corrections), so pairing always
// starts from an explicit sort; the same set of entries yields the same
// sessions regardless of input order.
//
// Pairing rules:
//   - an "in" entry opens a session for its (employee, site) pair;
//   - an "out" entry closes the most recently opened session with the exact
//     same (employee, site). If there is none and the employee has exactly
//     one open session at any site, that one is closed instead — this keeps
//     a shift intact when the site was renamed or omitted between punches.
//     With zero or several candidates the "out" stays unmatched;
//   - an unmatched "out" becomes a zero-duration orphan session anchored on
//     the out-entry alone. Orphans are kept visible so managers can audit
//     logging gaps; they are never dropped and never an error;
//   - sessions still open after the last entry are active, and their
//     duration is measured against now.
//
// Every entry ends up in exactly one session, and the result is ordered by
// session start time.
func BuildSessions(entries []model.Entry, now time.Time) []model.Session {
	sorted := make([]model.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TS != sorted[j].TS {
			return sorted[i].TS < sorted[j].TS
		}
		// Tie-break on ID so reconstruction is insensitive to input order.
		return sorted[i].ID < sorted[j].ID
	})

	sessions := make([]model.Session, 0, len(sorted)/2+1)
	openBySite := map[sessionKey][]int{}
	openByEmployee := map[string][]int{}

	for i := range sorted {
		e := sorted[i]
		switch e.Action {
		case model.ActionIn:
			entry := e
			sessions = append(sessions, model.Session{
				Employee:   e.Employee,
				EmployeeID: e.EmployeeID,
				Site:       e.Site,
				In:         &entry,
				Active:     true,
			})
			idx := len(sessions) - 1
			k := sessionKey{e.EmployeeID, e.Site}
			openBySite[k] = append(openBySite[k], idx)
			openByEmployee[e.EmployeeID] = append(openByEmployee[e.EmployeeID], idx)

		case model.ActionOut:
			idx, ok := takeOpen(openBySite, openByEmployee, e.EmployeeID, e.Site)
			if !ok {
				// No in-entry to pair with: surface the gap instead of
				// dropping the event.
				entry := e
				sessions = append(sessions, model.Session{
					Employee:   e.Employee,
					EmployeeID: e.EmployeeID,
					Site:       e.Site,
					Out:        &entry,
				})
				continue
			}
			entry := e
			s := &sessions[idx]
			s.Out = &entry
			s.Active = false
			s.Minutes = clampedMinutes(s.In.TS, e.TS)
		}
	}

	for i := range sessions {
		if sessions[i].Active {
			sessions[i].Minutes = clampedMinutes(sessions[i].In.TS, now.UnixMilli())
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Start() < sessions[j].Start()
	})
	return sessions
}

type sessionKey struct {
	employeeID string
	site       string
}

// takeOpen finds and removes the open session an "out" entry should close:
// exact (employee, site) match first, then the employee-only fallback when
// it is unambiguous.
func takeOpen(bySite map[sessionKey][]int, byEmployee map[string][]int, employeeID, site string) (int, bool) {
	k := sessionKey{employeeID, site}
	if stack := bySite[k]; len(stack) > 0 {
		idx := stack[len(stack)-1]
		bySite[k] = stack[:len(stack)-1]
		removeIdx(byEmployee, employeeID, idx)
		return idx, true
	}
	if open := byEmployee[employeeID]; len(open) == 1 {
		idx := open[0]
		delete(byEmployee, employeeID)
		removeFromSiteIndex(bySite, employeeID, idx)
		return idx, true
	}
	return 0, false
}

func removeIdx(byEmployee map[string][]int, employeeID string, idx int) {
	open := byEmployee[employeeID]
	for i, v := range open {
		if v == idx {
			byEmployee[employeeID] = append(open[:i], open[i+1:]...)
			return
		}
	}
}

func removeFromSiteIndex(bySite map[sessionKey][]int, employeeID string, idx int) {
	for k, stack := range bySite {
		if k.employeeID != employeeID {
			continue
		}
		for i, v := range stack {
			if v == idx {
				bySite[k] = append(stack[:i], stack[i+1:]...)
				return
			}
		}
	}
}

// clampedMinutes measures fromMs..toMs in minutes, clamped at zero so that
// out-of-order correction edits can never produce a negative duration.
func clampedMinutes(fromMs, toMs int64) float64 {
	if toMs <= fromMs {
		return 0
	}
	return float64(toMs-fromMs) / msPerMinute
}
