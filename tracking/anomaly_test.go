package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
	"github.com/warp/worktime-engine/tracking"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func berlin(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, generic.Berlin)
}

func closed(id string, user generic.EntityID, start, end time.Time) timeoff.TimeEntry {
	return timeoff.TimeEntry{ID: id, UserID: user, Start: start, End: &end, Duration: int64(end.Sub(start).Seconds())}
}

func detectorAt(now time.Time) *tracking.Detector {
	return &tracking.Detector{
		Holidays: calendar.Statutory{},
		Now:      func() time.Time { return now },
	}
}

func ofType(as []tracking.Anomaly, typ tracking.AnomalyType) []tracking.Anomaly {
	var out []tracking.Anomaly
	for _, a := range as {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

var alice = timeoff.User{ID: "alice", Name: "Alice"}

// =============================================================================
// MISSING / UNDER / EXCESS
// =============================================================================

func TestDetect_FiveMissingWorkDays(t *testing.T) {
	// GIVEN: No entries for Mon-Fri of a past week without holidays
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	week := generic.Period{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)}

	// WHEN: Scanning
	got := d.Detect(alice, nil, nil, week, calendar.BY)

	// THEN: Exactly five MISSING_ENTRY, none on the weekend
	require.Len(t, got, 5)
	for _, a := range got {
		assert.Equal(t, tracking.MissingEntry, a.Type)
		assert.False(t, a.Date.IsWeekend())
		assert.Equal(t, 8.0, a.Details.TargetHours)
	}
}

func TestDetect_TodayAndFutureNotMissing(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 5, 10, 0))
	p := generic.Period{Start: date(2025, time.March, 4), End: date(2025, time.March, 7)}

	got := d.Detect(alice, nil, nil, p, "")

	require.Len(t, got, 1)
	assert.Equal(t, date(2025, time.March, 4), got[0].Date)
}

func TestDetect_HolidayAndAbsenceSuppressMissing(t *testing.T) {
	d := detectorAt(berlin(2025, time.January, 20, 12, 0))
	epiphany := generic.Day(date(2025, time.January, 6))

	assert.Empty(t, d.Detect(alice, nil, nil, epiphany, calendar.BY))
	assert.Len(t, d.Detect(alice, nil, nil, epiphany, calendar.BE), 1)

	vac := []timeoff.AbsenceRequest{{UserID: "alice", Type: timeoff.AbsenceVacation, Status: timeoff.StatusApproved,
		StartDate: date(2025, time.January, 6), EndDate: date(2025, time.January, 10)}}
	p := generic.Period{Start: date(2025, time.January, 6), End: date(2025, time.January, 10)}
	assert.Empty(t, d.Detect(alice, nil, vac, p, calendar.BE))

	vac[0].Status = timeoff.StatusPending
	assert.Len(t, d.Detect(alice, nil, vac, p, calendar.BE), 5)
}

func TestDetect_UnderPerformance(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	entries := []timeoff.TimeEntry{closed("e1", "alice", berlin(2025, time.March, 4, 9, 0), berlin(2025, time.March, 4, 12, 0))}

	got := d.Detect(alice, entries, nil, generic.Day(date(2025, time.March, 4)), "")

	require.Len(t, got, 1)
	assert.Equal(t, tracking.UnderPerformance, got[0].Type)
	assert.Equal(t, 3.0, got[0].Details.TrackedHours)
}

func TestDetect_ExcessWork_ShootVsRegular(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	day := generic.Day(date(2025, time.March, 4))

	// 10h in the office: regular excess
	office := []timeoff.TimeEntry{closed("e1", "alice", berlin(2025, time.March, 4, 8, 0), berlin(2025, time.March, 4, 18, 0))}
	got := d.Detect(alice, office, nil, day, "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.ExcessWorkRegular, got[0].Type)

	// 10h on a shoot: within the shoot limit
	shoot := office
	shoot[0].TaskTitle = "Drehtag Außen"
	assert.Empty(t, d.Detect(alice, shoot, nil, day, ""))

	// 16h on a production: shoot excess
	long := []timeoff.TimeEntry{closed("e2", "alice", berlin(2025, time.March, 4, 6, 0), berlin(2025, time.March, 4, 22, 0))}
	long[0].ProjectName = "PRODUKTION Spot"
	got = d.Detect(alice, long, nil, day, "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.ExcessWorkShoot, got[0].Type)
	assert.True(t, got[0].Details.HasShoot)
}

func TestDetect_BerlinDayBoundary(t *testing.T) {
	// GIVEN: An entry at 23:30 UTC on March 4th, which is 00:30 on March 5th in Berlin
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	start := time.Date(2025, time.March, 4, 23, 30, 0, 0, time.UTC)
	e := closed("e1", "alice", start, start.Add(8*time.Hour))
	p := generic.Period{Start: date(2025, time.March, 4), End: date(2025, time.March, 5)}

	// WHEN: Scanning both days
	got := d.Detect(alice, []timeoff.TimeEntry{e}, nil, p, "")

	// THEN: March 4th is missing, March 5th carries the 8h
	require.Len(t, got, 1)
	assert.Equal(t, tracking.MissingEntry, got[0].Type)
	assert.Equal(t, date(2025, time.March, 4), got[0].Date)
}

func TestDetect_ThresholdEdges(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	day := generic.Day(date(2025, time.March, 4))
	entry := func(from, hours float64, project string) []timeoff.TimeEntry {
		start := berlin(2025, time.March, 4, 0, 0).Add(time.Duration(from * float64(time.Hour)))
		e := closed("e1", "alice", start, start.Add(time.Duration(hours*float64(time.Hour))))
		e.ProjectName = project
		return []timeoff.TimeEntry{e}
	}

	// Exactly at a limit does not fire
	assert.Empty(t, d.Detect(alice, entry(8, 9, "Imagefilm"), nil, day, ""), "9.0h regular")
	assert.Empty(t, d.Detect(alice, entry(6, 15, "Drehtag"), nil, day, ""), "15.0h shoot")
	assert.Empty(t, d.Detect(alice, entry(9, 4, "Imagefilm"), nil, day, ""), "4.0h is half of 8h")

	// Just past a limit does
	got := d.Detect(alice, entry(8, 9.1, "Imagefilm"), nil, day, "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.ExcessWorkRegular, got[0].Type)

	got = d.Detect(alice, entry(6, 15.1, "Drehtag"), nil, day, "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.ExcessWorkShoot, got[0].Type)

	got = d.Detect(alice, entry(9, 3.9, "Imagefilm"), nil, day, "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.UnderPerformance, got[0].Type)
}

func TestDetect_CustomClassifierAndThresholds(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	d.Classifier = func(e timeoff.TimeEntry) bool { return e.Billable }
	d.Thresholds = tracking.Thresholds{ShootMaxHours: 11}

	e := closed("e1", "alice", berlin(2025, time.March, 4, 8, 0), berlin(2025, time.March, 4, 20, 0))
	e.Billable = true

	got := d.Detect(alice, []timeoff.TimeEntry{e}, nil, generic.Day(date(2025, time.March, 4)), "")
	require.Len(t, got, 1)
	assert.Equal(t, tracking.ExcessWorkShoot, got[0].Type)
}

// =============================================================================
// FORGOT TO STOP
// =============================================================================

func TestForgotToStop_ShortNightNotFlagged(t *testing.T) {
	// GIVEN: D 22:00 to D+1 05:30, only 5.5h in the night window
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	e := closed("e1", "alice", berlin(2025, time.March, 4, 22, 0), berlin(2025, time.March, 5, 5, 30))
	p := generic.Period{Start: date(2025, time.March, 4), End: date(2025, time.March, 5)}

	got := d.Detect(alice, []timeoff.TimeEntry{e}, nil, p, "")

	assert.Empty(t, ofType(got, tracking.ForgotToStop))
}

func TestForgotToStop_OvernightFlaggedOnStartDate(t *testing.T) {
	// GIVEN: D 20:00 to D+1 07:00 covers the whole night window
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	e := closed("e1", "alice", berlin(2025, time.March, 4, 20, 0), berlin(2025, time.March, 5, 7, 0))
	p := generic.Period{Start: date(2025, time.March, 4), End: date(2025, time.March, 5)}

	got := ofType(d.Detect(alice, []timeoff.TimeEntry{e}, nil, p, ""), tracking.ForgotToStop)

	require.Len(t, got, 1)
	assert.Equal(t, date(2025, time.March, 4), got[0].Date)
	assert.Equal(t, "e1", got[0].EntryID)
}

func TestForgotToStop_RunningTimer(t *testing.T) {
	running := timeoff.TimeEntry{ID: "r1", UserID: "alice", Start: berlin(2025, time.March, 4, 20, 0)}
	day := generic.Day(date(2025, time.March, 4))

	// Only 3h into the window so far
	early := detectorAt(berlin(2025, time.March, 5, 3, 0))
	assert.Empty(t, ofType(early.Detect(alice, []timeoff.TimeEntry{running}, nil, day, ""), tracking.ForgotToStop))

	// Window fully covered
	morning := detectorAt(berlin(2025, time.March, 5, 6, 30))
	assert.Len(t, ofType(morning.Detect(alice, []timeoff.TimeEntry{running}, nil, day, ""), tracking.ForgotToStop), 1)

	// A week later the old timer is still reported on its start date
	later := detectorAt(berlin(2025, time.March, 11, 9, 0))
	got := ofType(later.Detect(alice, []timeoff.TimeEntry{running}, nil, generic.Period{Start: date(2025, time.March, 1), End: date(2025, time.March, 11)}, ""), tracking.ForgotToStop)
	require.Len(t, got, 1)
	assert.Equal(t, date(2025, time.March, 4), got[0].Date)
}

func TestForgotToStop_SpringForwardNight(t *testing.T) {
	// 2025-03-30 00:00 to 06:00 lasts only five real hours in Berlin
	d := detectorAt(berlin(2025, time.April, 2, 12, 0))
	e := closed("e1", "alice", berlin(2025, time.March, 29, 20, 0), berlin(2025, time.March, 30, 7, 0))

	got := ofType(d.Detect(alice, []timeoff.TimeEntry{e}, nil, generic.Day(date(2025, time.March, 29)), ""), tracking.ForgotToStop)

	assert.Len(t, got, 1)
}

// =============================================================================
// DETECT ALL
// =============================================================================

func TestDetectAll_SkipsInactiveAndSorts(t *testing.T) {
	d := detectorAt(berlin(2025, time.March, 12, 12, 0))
	bob := timeoff.User{ID: "bob", Status: timeoff.UserActive}
	carol := timeoff.User{ID: "carol", Status: timeoff.UserInactive}
	p := generic.Period{Start: date(2025, time.March, 3), End: date(2025, time.March, 4)}

	got := d.DetectAll([]timeoff.User{bob, carol, alice}, nil, nil, p, "")

	require.Len(t, got, 4)
	assert.Equal(t, generic.EntityID("alice"), got[0].UserID)
	assert.Equal(t, generic.EntityID("bob"), got[1].UserID)
	assert.Equal(t, date(2025, time.March, 4), got[2].Date)
	assert.Equal(t, map[tracking.AnomalyType]int{tracking.MissingEntry: 4}, tracking.CountByType(got))
}
