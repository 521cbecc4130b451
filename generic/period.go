package generic

import "time"

// =============================================================================
// PERIOD - Inclusive range of civil dates
// =============================================================================

// Period defines an inclusive range [Start, End] of days.
// A period whose End lies before its Start is empty rather than invalid: every
// computation over it yields zero.
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - A week bucket clipped to a month: Mar 29 - Mar 31
//   - A one-day absence: Start == End
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Day returns the single-day period for tp.
func Day(tp TimePoint) Period { return Period{Start: tp, End: tp} }

// IsEmpty reports whether the period contains no days.
func (p Period) IsEmpty() bool { return p.End.Before(p.Start) }

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether the two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	if p.IsEmpty() || other.IsEmpty() {
		return false
	}
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// Intersect returns the overlap of both periods, possibly empty.
func (p Period) Intersect(other Period) Period {
	start, end := p.Start, p.End
	if other.Start.After(start) {
		start = other.Start
	}
	if other.End.Before(end) {
		end = other.End
	}
	return Period{Start: start, End: end}
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	if p.IsEmpty() {
		return nil
	}
	days := make([]TimePoint, 0, DaysBetween(p.Start, p.End)+1)
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.IsEmpty() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Years returns the distinct calendar years the period spans, ascending.
func (p Period) Years() []int {
	if p.IsEmpty() {
		return nil
	}
	years := make([]int, 0, p.End.Year()-p.Start.Year()+1)
	for y := p.Start.Year(); y <= p.End.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// Instants returns the half-open instant range [start of Start, start of End+1) in loc.
func (p Period) Instants(loc *time.Location) (time.Time, time.Time) {
	return p.Start.StartIn(loc), p.End.AddDays(1).StartIn(loc)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD CONSTRUCTORS
// =============================================================================

// YearPeriod returns Jan 1 - Dec 31 of year.
func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// MonthPeriod returns the first through last day of the month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// WeekPeriod returns the Monday-first week containing tp.
func WeekPeriod(tp TimePoint) Period {
	start := StartOfWeek(tp)
	return Period{Start: start, End: start.AddDays(6)}
}
