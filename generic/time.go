package generic

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Berlin must resolve on hosts without zoneinfo
)

// =============================================================================
// TIME POINT - A civil calendar date
// =============================================================================

// Berlin is the zone every day-bucketing decision is made in.
var Berlin = mustLoadLocation("Europe/Berlin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// TimePoint is a calendar date without a zone. It is stored as midnight UTC so
// that two TimePoints compare equal iff they name the same civil day.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil date of instant t in loc.
// The same instant can land on different days in UTC and Europe/Berlin.
func DateOf(t time.Time, loc *time.Location) TimePoint {
	if loc == nil {
		loc = Berlin
	}
	local := t.In(loc)
	return NewTimePoint(local.Year(), local.Month(), local.Day())
}

// Today returns the civil date of now in loc.
func Today(now time.Time, loc *time.Location) TimePoint {
	return DateOf(now, loc)
}

// ParseDate accepts "2006-01-02" or any RFC3339 timestamp; for timestamps only
// the date part is used, matching how absence dates are stored.
func ParseDate(s string) (TimePoint, error) {
	raw := strings.TrimSpace(s)
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		raw = raw[:i]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return TimePoint{}, &ParseError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartIn returns the instant the day begins in loc.
func (tp TimePoint) StartIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = Berlin
	}
	return time.Date(tp.Year(), tp.Month(), tp.Day(), 0, 0, 0, 0, loc)
}

// At returns the instant of the given wall-clock hour on this day in loc.
func (tp TimePoint) At(hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = Berlin
	}
	return time.Date(tp.Year(), tp.Month(), tp.Day(), hour, 0, 0, 0, loc)
}

func (tp TimePoint) String() string {
	return tp.Time.Format("2006-01-02")
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month+1, 1).AddDays(-1)
}

// StartOfWeek returns the Monday of the week containing tp.
func StartOfWeek(tp TimePoint) TimePoint {
	offset := (int(tp.Weekday()) + 6) % 7
	return tp.AddDays(-offset)
}

func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}
