package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/worktime-engine/generic"
)

type fixedCalendar map[generic.TimePoint]string

func (c fixedCalendar) IsHoliday(region generic.Region, date generic.TimePoint) bool {
	_, ok := c[date]
	return ok
}

func (c fixedCalendar) GetHolidays(region generic.Region, year int) []generic.Holiday {
	var out []generic.Holiday
	for date, name := range c {
		if date.Year() == year {
			out = append(out, generic.Holiday{Date: date, Name: name})
		}
	}
	generic.SortHolidays(out)
	return out
}

func TestScheduleOrDefault(t *testing.T) {
	// GIVEN: No schedule at all
	// THEN: Mon-Fri, 8h, 30 days
	def := generic.ScheduleOrDefault(nil)
	assert.Equal(t, generic.DefaultWorkSchedule(), def)
	assert.Equal(t, 5, def.WorkDaysPerWeek())

	// GIVEN: A schedule with zero hours per day
	// THEN: Hours are repaired to 8, weekdays kept
	partTime := generic.ScheduleForWeekdays([]time.Weekday{time.Monday, time.Wednesday}, 0, 20)
	got := generic.ScheduleOrDefault(&partTime)
	assert.Equal(t, 8.0, got.HoursPerDay)
	assert.Equal(t, 20.0, got.VacationDaysPerYear)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, got.Weekdays())
}

func TestIsWorkdayWithHolidays(t *testing.T) {
	s := generic.DefaultWorkSchedule()
	newYear := d(2025, time.January, 1)
	cal := fixedCalendar{newYear: "Neujahr"}

	assert.True(t, s.IsWorkDay(newYear))
	assert.False(t, s.IsWorkdayWithHolidays(newYear, cal, "BY"))
	assert.True(t, s.IsWorkdayWithHolidays(d(2025, time.January, 2), cal, "BY"))
	assert.False(t, s.IsWorkdayWithHolidays(d(2025, time.January, 4), cal, "BY"))
}

func TestHolidayLookup_JoinsSameDayNames(t *testing.T) {
	day := d(2025, time.May, 29)
	cal := &listCalendar{holidays: []generic.Holiday{
		{Date: day, Name: "A"},
		{Date: day, Name: "B"},
	}}
	l := generic.NewHolidayLookup(cal, "")

	name, ok := l.Name(day)
	assert.True(t, ok)
	assert.Equal(t, "A / B", name)
	assert.False(t, l.IsHoliday(day.AddDays(1)))
	assert.Equal(t, 1, cal.calls)
}

type listCalendar struct {
	holidays []generic.Holiday
	calls    int
}

func (c *listCalendar) IsHoliday(region generic.Region, date generic.TimePoint) bool { return false }
func (c *listCalendar) GetHolidays(region generic.Region, year int) []generic.Holiday {
	c.calls++
	return c.holidays
}
