package generic

import "sort"

// =============================================================================
// HOLIDAY CALENDAR - Public holidays per region
// =============================================================================

// Region identifies a holiday jurisdiction (e.g. a German state code "BY").
// The empty region selects only holidays that apply everywhere.
type Region string

// Holiday represents a day off that does not count against target hours.
type Holiday struct {
	ID        string
	Date      TimePoint
	Name      string
	Regions   []Region // nil = all regions
	Recurring bool     // same month/day every year
}

// AppliesTo reports whether the holiday is observed in region.
func (h Holiday) AppliesTo(region Region) bool {
	if len(h.Regions) == 0 {
		return true
	}
	for _, r := range h.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a holiday in the given region.
	IsHoliday(region Region, date TimePoint) bool

	// GetHolidays returns all holidays observed in region during year.
	GetHolidays(region Region, year int) []Holiday
}

// DefaultHolidayCalendar is a no-op calendar for when holidays are disabled.
type DefaultHolidayCalendar struct{}

func (d *DefaultHolidayCalendar) IsHoliday(region Region, date TimePoint) bool { return false }
func (d *DefaultHolidayCalendar) GetHolidays(region Region, year int) []Holiday { return nil }

// SortHolidays orders holidays by date, then name.
func SortHolidays(hs []Holiday) {
	sort.SliceStable(hs, func(i, j int) bool {
		if !hs[i].Date.Equal(hs[j].Date) {
			return hs[i].Date.Before(hs[j].Date)
		}
		return hs[i].Name < hs[j].Name
	})
}

// =============================================================================
// HOLIDAY LOOKUP - Per-call index, one calendar fetch per year
// =============================================================================

// HolidayLookup answers IsHoliday for many days while fetching each year's
// holidays from the calendar only once. It is meant to live for one computation.
type HolidayLookup struct {
	calendar HolidayCalendar
	region   Region
	years    map[int]map[TimePoint]string
}

// NewHolidayLookup creates a lookup; a nil calendar knows no holidays.
func NewHolidayLookup(calendar HolidayCalendar, region Region) *HolidayLookup {
	if calendar == nil {
		calendar = &DefaultHolidayCalendar{}
	}
	return &HolidayLookup{calendar: calendar, region: region, years: make(map[int]map[TimePoint]string)}
}

// Name returns the holiday name for date, if any.
func (l *HolidayLookup) Name(date TimePoint) (string, bool) {
	idx, ok := l.years[date.Year()]
	if !ok {
		idx = make(map[TimePoint]string)
		for _, h := range l.calendar.GetHolidays(l.region, date.Year()) {
			if prev, dup := idx[h.Date]; dup && prev != h.Name {
				idx[h.Date] = prev + " / " + h.Name
				continue
			}
			idx[h.Date] = h.Name
		}
		l.years[date.Year()] = idx
	}
	name, found := idx[date]
	return name, found
}

// IsHoliday reports whether date is a holiday.
func (l *HolidayLookup) IsHoliday(date TimePoint) bool {
	_, ok := l.Name(date)
	return ok
}
