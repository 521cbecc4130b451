package calendar

import (
	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// STATUTORY - generic.HolidayCalendar over the built-in rules
// =============================================================================

// Statutory is the calendar of German public holidays.
type Statutory struct{}

func (Statutory) IsHoliday(region generic.Region, date generic.TimePoint) bool {
	_, ok := IsHoliday(date, region)
	return ok
}

func (Statutory) GetHolidays(region generic.Region, year int) []generic.Holiday {
	return Holidays(year, region)
}

// =============================================================================
// COMPOSITE - Several calendars as one
// =============================================================================

// Composite merges holidays from several calendars. A date is a holiday if any
// member says so; duplicate (date, name) pairs are reported once.
type Composite []generic.HolidayCalendar

func (c Composite) IsHoliday(region generic.Region, date generic.TimePoint) bool {
	for _, cal := range c {
		if cal != nil && cal.IsHoliday(region, date) {
			return true
		}
	}
	return false
}

func (c Composite) GetHolidays(region generic.Region, year int) []generic.Holiday {
	type key struct {
		date generic.TimePoint
		name string
	}
	seen := make(map[key]bool)
	var out []generic.Holiday
	for _, cal := range c {
		if cal == nil {
			continue
		}
		for _, h := range cal.GetHolidays(region, year) {
			k := key{h.Date, h.Name}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, h)
		}
	}
	generic.SortHolidays(out)
	return out
}

// Names flattens any calendar into a date -> joined-name map for one year.
func Names(cal generic.HolidayCalendar, region generic.Region, year int) map[generic.TimePoint]string {
	if cal == nil {
		return map[generic.TimePoint]string{}
	}
	return byDate(cal.GetHolidays(region, year))
}
