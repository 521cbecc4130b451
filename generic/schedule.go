package generic

import "time"

// =============================================================================
// WORK SCHEDULE - Which weekdays a person is expected to work
// =============================================================================

const (
	DefaultHoursPerDay         = 8.0
	DefaultVacationDaysPerYear = 30.0
)

// WorkSchedule is a weekly pattern plus the daily target and yearly vacation.
type WorkSchedule struct {
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool

	HoursPerDay         float64
	VacationDaysPerYear float64
}

// DefaultWorkSchedule is Mon-Fri, 8h/day, 30 vacation days.
func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		Monday:              true,
		Tuesday:             true,
		Wednesday:           true,
		Thursday:            true,
		Friday:              true,
		HoursPerDay:         DefaultHoursPerDay,
		VacationDaysPerYear: DefaultVacationDaysPerYear,
	}
}

// ScheduleOrDefault resolves a possibly missing schedule.
// A missing schedule falls back to the default; a non-positive HoursPerDay is
// repaired to 8 so that hour/day conversions never divide by zero.
func ScheduleOrDefault(s *WorkSchedule) WorkSchedule {
	if s == nil {
		return DefaultWorkSchedule()
	}
	out := *s
	if out.HoursPerDay <= 0 {
		out.HoursPerDay = DefaultHoursPerDay
	}
	if out.VacationDaysPerYear < 0 {
		out.VacationDaysPerYear = 0
	}
	return out
}

// WorksOn reports whether the weekday is scheduled.
func (s WorkSchedule) WorksOn(wd time.Weekday) bool {
	switch wd {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	default:
		return s.Sunday
	}
}

// IsWorkDay reports whether date falls on a scheduled weekday.
// Holidays are not considered here; see IsWorkdayWithHolidays.
func (s WorkSchedule) IsWorkDay(date TimePoint) bool {
	return s.WorksOn(date.Weekday())
}

// WorkDaysPerWeek counts the scheduled weekdays.
func (s WorkSchedule) WorkDaysPerWeek() int {
	n := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if s.WorksOn(wd) {
			n++
		}
	}
	return n
}

// Weekdays returns the scheduled weekdays, Monday first.
func (s WorkSchedule) Weekdays() []time.Weekday {
	var out []time.Weekday
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		if s.WorksOn(wd) {
			out = append(out, wd)
		}
	}
	return out
}

// ScheduleForWeekdays builds a schedule from an explicit weekday list.
func ScheduleForWeekdays(days []time.Weekday, hoursPerDay, vacationDays float64) WorkSchedule {
	s := WorkSchedule{HoursPerDay: hoursPerDay, VacationDaysPerYear: vacationDays}
	for _, wd := range days {
		switch wd {
		case time.Monday:
			s.Monday = true
		case time.Tuesday:
			s.Tuesday = true
		case time.Wednesday:
			s.Wednesday = true
		case time.Thursday:
			s.Thursday = true
		case time.Friday:
			s.Friday = true
		case time.Saturday:
			s.Saturday = true
		case time.Sunday:
			s.Sunday = true
		}
	}
	return s
}

// IsWorkdayWithHolidays checks if a date is a working day, considering holidays.
func (s WorkSchedule) IsWorkdayWithHolidays(date TimePoint, calendar HolidayCalendar, region Region) bool {
	if !s.IsWorkDay(date) {
		return false
	}
	if calendar != nil && calendar.IsHoliday(region, date) {
		return false
	}
	return true
}
