/*
Package tracking turns raw time entries into views: period buckets with
worked and target hours, and per-day anomaly scans.

PURPOSE:
  The aggregator buckets a user's entries by year (12 months), month
  (7-day chunks from the 1st) or week (7 days, Monday first). Each bucket
  carries worked hours, target hours and the first approved absence
  touching it, so a chart can annotate vacations.

  The detector walks days and reports suspicious patterns.

BUCKETING:
  An entry belongs to the bucket containing the Europe/Berlin civil date
  of its start. An entry crossing midnight is not split.

SEE ALSO:
  - anomaly.go: Detector
  - timeoff/target.go: Target hours per bucket
*/
package tracking

import (
	"fmt"
	"time"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

var (
	MonthLabels   = [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}
	WeekdayLabels = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}
)

// Bucket is one bar of a statistics chart.
type Bucket struct {
	Label       string
	Period      generic.Period
	Hours       float64
	TargetHours float64
	Absence     *timeoff.AbsenceRequest
}

// Aggregator builds bucket series for one user.
type Aggregator struct {
	Target   *timeoff.TargetHoursCalculator
	Location *time.Location // nil = Europe/Berlin
}

// NewAggregator returns an aggregator over the given holiday calendar.
func NewAggregator(holidays generic.HolidayCalendar, loc *time.Location) *Aggregator {
	return &Aggregator{Target: &timeoff.TargetHoursCalculator{Holidays: holidays}, Location: loc}
}

// ByYear returns the 12 months of year, Jan first.
func (a *Aggregator) ByYear(entries []timeoff.TimeEntry, absences []timeoff.AbsenceRequest, user timeoff.User, year int, region generic.Region) []Bucket {
	idx := a.index(entries, user.ID)
	out := make([]Bucket, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, a.bucket(idx, absences, user, generic.MonthPeriod(year, m), MonthLabels[m-1], region))
	}
	return out
}

// ByMonth splits the month into 7-day chunks starting on the 1st; the last
// chunk is clipped at month end. Labels are "KW 1", "KW 2", ...
func (a *Aggregator) ByMonth(entries []timeoff.TimeEntry, absences []timeoff.AbsenceRequest, user timeoff.User, year int, month time.Month, region generic.Region) []Bucket {
	idx := a.index(entries, user.ID)
	monthSpan := generic.MonthPeriod(year, month)

	var out []Bucket
	for start, n := monthSpan.Start, 1; start.BeforeOrEqual(monthSpan.End); start, n = start.AddDays(7), n+1 {
		chunk := generic.Period{Start: start, End: start.AddDays(6)}.Intersect(monthSpan)
		out = append(out, a.bucket(idx, absences, user, chunk, fmt.Sprintf("KW %d", n), region))
	}
	return out
}

// ByWeek returns 7 daily buckets Mo..So for the week containing weekStart.
func (a *Aggregator) ByWeek(entries []timeoff.TimeEntry, absences []timeoff.AbsenceRequest, user timeoff.User, weekStart generic.TimePoint, region generic.Region) []Bucket {
	idx := a.index(entries, user.ID)
	monday := WeekStart(weekStart)

	out := make([]Bucket, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, a.bucket(idx, absences, user, generic.Day(monday.AddDays(i)), WeekdayLabels[i], region))
	}
	return out
}

// WeekStart returns the Monday on or before date.
func WeekStart(date generic.TimePoint) generic.TimePoint {
	return generic.StartOfWeek(date)
}

// =============================================================================
// INTERNALS
// =============================================================================

// dayIndex maps a civil date to the seconds tracked on it.
type dayIndex map[generic.TimePoint]int64

func (a *Aggregator) index(entries []timeoff.TimeEntry, userID generic.EntityID) dayIndex {
	idx := make(dayIndex)
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		idx[e.StartDate(a.Location)] += e.Duration
	}
	return idx
}

func (a *Aggregator) bucket(idx dayIndex, absences []timeoff.AbsenceRequest, user timeoff.User, period generic.Period, label string, region generic.Region) Bucket {
	var seconds int64
	for _, day := range period.Days() {
		seconds += idx[day]
	}

	b := Bucket{
		Label:       label,
		Period:      period,
		Hours:       generic.Round1(float64(seconds) / 3600),
		TargetHours: generic.Round1(a.target().Calculate(user, period, absences, region)),
	}
	if abs, ok := timeoff.FirstApprovedIn(absences, user.ID, period); ok {
		b.Absence = &abs
	}
	return b
}

func (a *Aggregator) target() *timeoff.TargetHoursCalculator {
	if a.Target == nil {
		return &timeoff.TargetHoursCalculator{}
	}
	return a.Target
}
