package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/generic"
)

func date(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

var knownEasters = map[int]generic.TimePoint{
	2019: date(2019, time.April, 21),
	2024: date(2024, time.March, 31),
	2025: date(2025, time.April, 20),
	2026: date(2026, time.April, 5),
	2038: date(2038, time.April, 25),
}

func TestComputeEaster_KnownYears(t *testing.T) {
	for year, want := range knownEasters {
		assert.Equal(t, want, calendar.ComputeEaster(year), "easter %d", year)
	}
}

func TestEasterRelativeHolidays_KnownYears(t *testing.T) {
	offsets := map[int]string{
		-2: "Karfreitag",
		1:  "Ostermontag",
		39: "Christi Himmelfahrt",
		50: "Pfingstmontag",
		60: "Fronleichnam",
	}
	for year, easter := range knownEasters {
		hs := calendar.GetHolidays(year, calendar.BY)
		for offset, name := range offsets {
			assert.Equal(t, name, hs[easter.AddDays(offset)], "%s %d", name, year)
		}
	}
}

func TestEasterRelativeHolidays_2025(t *testing.T) {
	// GIVEN: Easter 2025 is April 20
	hs := calendar.GetHolidays(2025, calendar.BY)

	// THEN: Every movable holiday sits at its offset
	assert.Equal(t, "Karfreitag", hs[date(2025, time.April, 18)])
	assert.Equal(t, "Ostermontag", hs[date(2025, time.April, 21)])
	assert.Equal(t, "Christi Himmelfahrt", hs[date(2025, time.May, 29)])
	assert.Equal(t, "Pfingstmontag", hs[date(2025, time.June, 9)])
	assert.Equal(t, "Fronleichnam", hs[date(2025, time.June, 19)])
}

func TestRegionalHolidays(t *testing.T) {
	epiphany := date(2025, time.January, 6)

	_, ok := calendar.IsHoliday(epiphany, calendar.BY)
	assert.True(t, ok)
	_, ok = calendar.IsHoliday(epiphany, calendar.BE)
	assert.False(t, ok)

	name, ok := calendar.IsHoliday(date(2025, time.March, 8), calendar.BE)
	assert.True(t, ok)
	assert.Equal(t, "Internationaler Frauentag", name)
}

func TestUnknownRegion_OnlyNationwide(t *testing.T) {
	hs := calendar.GetHolidays(2025, "XX")
	none := calendar.GetHolidays(2025, "")

	assert.Equal(t, none, hs)
	// Neujahr, Karfreitag, Ostermontag, Tag der Arbeit, Himmelfahrt,
	// Pfingstmontag, Einheit, two Christmas days
	assert.Len(t, hs, 9)
	_, ok := hs[date(2025, time.June, 19)]
	assert.False(t, ok, "Fronleichnam is regional")
}

func TestRepentanceDay_WednesdayBeforeNov23(t *testing.T) {
	cases := map[int]generic.TimePoint{
		2023: date(2023, time.November, 22),
		2024: date(2024, time.November, 20),
		2025: date(2025, time.November, 19),
		2026: date(2026, time.November, 18),
	}
	for year, want := range cases {
		name, ok := calendar.IsHoliday(want, calendar.SN)
		require.True(t, ok, "year %d", year)
		assert.Equal(t, "Buß- und Bettag", name)
		assert.Equal(t, time.Wednesday, want.Weekday())
	}
	_, ok := calendar.IsHoliday(date(2025, time.November, 19), calendar.BY)
	assert.False(t, ok)
}

func TestSameDayHolidaysJoined(t *testing.T) {
	// 2008: Ascension (Easter+39) fell on May 1
	hs := calendar.GetHolidays(2008, "")
	assert.Equal(t, "Christi Himmelfahrt / Tag der Arbeit", hs[date(2008, time.May, 1)])
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, calendar.IsWeekend(date(2025, time.March, 8)))
	assert.True(t, calendar.IsWeekend(date(2025, time.March, 9)))
	assert.False(t, calendar.IsWeekend(date(2025, time.March, 10)))
}

func TestStatesComplete(t *testing.T) {
	assert.Len(t, calendar.States(), 16)
	assert.True(t, calendar.IsKnownState("NW"))
	assert.False(t, calendar.IsKnownState("XX"))
}
