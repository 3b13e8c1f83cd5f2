package timesheet

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecard.service/internal/core/model"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func entry(id, employeeID string, action model.ClockAction, at time.Time, site string) model.Entry {
	return model.Entry{
		ID:         id,
		Employee:   "Employee " + employeeID,
		EmployeeID: employeeID,
		Action:     action,
		TS:         at.UnixMilli(),
		Site:       site,
	}
}

func TestBuildSessionsPairsInAndOut(t *testing.T) {
	entries := []model.Entry{
		entry("e1", "A", model.ActionIn, base, "Office X"),
		entry("e2", "A", model.ActionOut, base.Add(90*time.Minute), "Office X"),
	}

	sessions := BuildSessions(entries, base.Add(3*time.Hour))

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "A", s.EmployeeID)
	assert.Equal(t, "Office X", s.Site)
	assert.False(t, s.Active)
	assert.Equal(t, 90.0, s.Minutes)
	require.NotNil(t, s.In)
	require.NotNil(t, s.Out)
}

func TestBuildSessionsSiteMismatchFallback(t *testing.T) {
	// The site was renamed between punches; with exactly one open session
	// for the employee the "out" still closes it.
	entries := []model.Entry{
		entry("e1", "A", model.ActionIn, base, "Office X"),
		entry("e2", "A", model.ActionOut, base.Add(60*time.Minute), "Office Y"),
	}

	sessions := BuildSessions(entries, base.Add(2*time.Hour))

	require.Len(t, sessions, 1)
	assert.Equal(t, "Office X", sessions[0].Site)
	assert.Equal(t, 60.0, sessions[0].Minutes)
	assert.False(t, sessions[0].Active)
}

func TestBuildSessionsAmbiguousOutBecomesOrphan(t *testing.T) {
	// Two open sessions at different sites: closing by employee alone would
	// be a guess, so the mismatched "out" stays unmatched.
	entries := []model.Entry{
		entry("e1", "A", model.ActionIn, base, "Office X"),
		entry("e2", "A", model.ActionIn, base.Add(10*time.Minute), "Office Y"),
		entry("e3", "A", model.ActionOut, base.Add(60*time.Minute), "Office Z"),
	}

	sessions := BuildSessions(entries, base.Add(2*time.Hour))

	require.Len(t, sessions, 3)
	var orphans, active int
	for _, s := range sessions {
		if s.In == nil {
			orphans++
			assert.Equal(t, 0.0, s.Minutes)
		}
		if s.Active {
			active++
		}
	}
	assert.Equal(t, 1, orphans)
	assert.Equal(t, 2, active)
}

func TestBuildSessionsLoneOutIsOrphan(t *testing.T) {
	entries := []model.Entry{
		entry("e1", "A", model.ActionOut, base.Add(30*time.Minute), ""),
	}

	sessions := BuildSessions(entries, base.Add(time.Hour))

	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].In)
	require.NotNil(t, sessions[0].Out)
	assert.Equal(t, 0.0, sessions[0].Minutes)
	assert.False(t, sessions[0].Active)
}

func TestBuildSessionsActiveMeasuredAgainstNow(t *testing.T) {
	entries := []model.Entry{
		entry("e1", "A", model.ActionIn, base, "Office X"),
	}

	sessions := BuildSessions(entries, base.Add(45*time.Minute))

	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Active)
	assert.Equal(t, 45.0, sessions[0].Minutes)
}

func TestBuildSessionsClampsInvertedTimestamps(t *testing.T) {
	// A correction edit can leave the "out" before the "in"; the duration
	// clamps to zero instead of going negative.
	entries := []model.Entry{
		entry("e1", "A", model.ActionIn, base.Add(time.Hour), "Office X"),
		entry("e2", "A", model.ActionOut, base, "Office X"),
	}

	sessions := BuildSessions(entries, base.Add(2*time.Hour))

	// Sorted by timestamp the "out" comes first and orphans; the "in"
	// stays active. Neither duration may be negative.
	for _, s := range sessions {
		assert.GreaterOrEqual(t, s.Minutes, 0.0)
	}
}

func TestBuildSessionsEveryEntryInExactlyOneSession(t *testing.T) {
	var entries []model.Entry
	for i := 0; i < 7; i++ {
		employee := fmt.Sprintf("emp-%d", i%3)
		entries = append(entries,
			entry(fmt.Sprintf("in-%d", i), employee, model.ActionIn, base.Add(time.Duration(i)*17*time.Minute), "Site A"),
			entry(fmt.Sprintf("out-%d", i), employee, model.ActionOut, base.Add(time.Duration(i)*17*time.Minute+40*time.Minute), "Site A"),
		)
	}
	// And one lone out that must not disappear.
	entries = append(entries, entry("stray", "emp-9", model.ActionOut, base.Add(5*time.Minute), "Site B"))

	sessions := BuildSessions(entries, base.Add(24*time.Hour))

	seen := map[string]int{}
	for _, s := range sessions {
		if s.In != nil {
			seen[s.In.ID]++
		}
		if s.Out != nil {
			seen[s.Out.ID]++
		}
	}
	require.Len(t, seen, len(entries))
	for id, count := range seen {
		assert.Equalf(t, 1, count, "entry %s appeared %d times", id, count)
	}
}

func TestBuildSessionsSortIndependent(t *testing.T) {
	var entries []model.Entry
	for i := 0; i < 10; i++ {
		employee := fmt.Sprintf("emp-%d", i%4)
		site := fmt.Sprintf("Site %d", i%2)
		entries = append(entries,
			entry(fmt.Sprintf("in-%d", i), employee, model.ActionIn, base.Add(time.Duration(i)*23*time.Minute), site),
			entry(fmt.Sprintf("out-%d", i), employee, model.ActionOut, base.Add(time.Duration(i)*23*time.Minute+50*time.Minute), site),
		)
	}
	now := base.Add(48 * time.Hour)
	want := BuildSessions(entries, now)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]model.Entry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := BuildSessions(shuffled, now)
		assert.Equal(t, want, got)
	}
}

func TestBuildSessionsOrderedByStart(t *testing.T) {
	entries := []model.Entry{
		entry("e3", "B", model.ActionIn, base.Add(2*time.Hour), "Site B"),
		entry("e1", "A", model.ActionIn, base, "Site A"),
		entry("e2", "A", model.ActionOut, base.Add(time.Hour), "Site A"),
	}

	sessions := BuildSessions(entries, base.Add(3*time.Hour))

	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Start() <= sessions[1].Start())
	assert.Equal(t, "A", sessions[0].EmployeeID)
}
