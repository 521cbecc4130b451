/*
Package calendar knows the German statutory public holidays.

PURPOSE:
  Produces the holiday map of a year for one of the sixteen federal states.
  Holidays are either fixed (month, day), offset from Easter Sunday, or
  computed by a weekday rule. Everything is deterministic and side-effect
  free; callers that want memoization wrap a calendar in Cached.

SEE ALSO:
  - generic/holiday.go: HolidayCalendar interface implemented here
  - cache.go: go-cache backed memoization
*/
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// STATES
// =============================================================================

const (
	BW generic.Region = "BW"
	BY generic.Region = "BY"
	BE generic.Region = "BE"
	BB generic.Region = "BB"
	HB generic.Region = "HB"
	HH generic.Region = "HH"
	HE generic.Region = "HE"
	MV generic.Region = "MV"
	NI generic.Region = "NI"
	NW generic.Region = "NW"
	RP generic.Region = "RP"
	SL generic.Region = "SL"
	SN generic.Region = "SN"
	ST generic.Region = "ST"
	SH generic.Region = "SH"
	TH generic.Region = "TH"
)

// StateNames maps each state code to its display name.
var StateNames = map[generic.Region]string{
	BW: "Baden-Württemberg",
	BY: "Bayern",
	BE: "Berlin",
	BB: "Brandenburg",
	HB: "Bremen",
	HH: "Hamburg",
	HE: "Hessen",
	MV: "Mecklenburg-Vorpommern",
	NI: "Niedersachsen",
	NW: "Nordrhein-Westfalen",
	RP: "Rheinland-Pfalz",
	SL: "Saarland",
	SN: "Sachsen",
	ST: "Sachsen-Anhalt",
	SH: "Schleswig-Holstein",
	TH: "Thüringen",
}

// IsKnownState reports whether r is one of the sixteen state codes.
func IsKnownState(r generic.Region) bool {
	_, ok := StateNames[r]
	return ok
}

// States returns all state codes sorted alphabetically.
func States() []generic.Region {
	out := make([]generic.Region, 0, len(StateNames))
	for r := range StateNames {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// RULES
// =============================================================================

// rule places one named holiday in a year. regions nil means nationwide.
type rule struct {
	name    string
	regions []generic.Region
	date    func(year int) generic.TimePoint
}

func fixed(month time.Month, day int) func(int) generic.TimePoint {
	return func(year int) generic.TimePoint { return generic.NewTimePoint(year, month, day) }
}

func easterOffset(days int) func(int) generic.TimePoint {
	return func(year int) generic.TimePoint { return ComputeEaster(year).AddDays(days) }
}

// repentanceDay is the last Wednesday strictly before November 23.
func repentanceDay(year int) generic.TimePoint {
	d := generic.NewTimePoint(year, time.November, 22)
	for d.Weekday() != time.Wednesday {
		d = d.AddDays(-1)
	}
	return d
}

var rules = []rule{
	{name: "Neujahr", date: fixed(time.January, 1)},
	{name: "Heilige Drei Könige", regions: []generic.Region{BW, BY, ST}, date: fixed(time.January, 6)},
	{name: "Internationaler Frauentag", regions: []generic.Region{BE}, date: fixed(time.March, 8)},
	{name: "Tag der Arbeit", date: fixed(time.May, 1)},
	{name: "Augsburger Friedensfest", regions: []generic.Region{BY}, date: fixed(time.August, 8)},
	{name: "Mariä Himmelfahrt", regions: []generic.Region{BY, SL}, date: fixed(time.August, 15)},
	{name: "Weltkindertag", regions: []generic.Region{TH}, date: fixed(time.September, 20)},
	{name: "Tag der Deutschen Einheit", date: fixed(time.October, 3)},
	{name: "Reformationstag", regions: []generic.Region{BB, HB, HH, MV, NI, SN, ST, SH, TH}, date: fixed(time.October, 31)},
	{name: "Allerheiligen", regions: []generic.Region{BW, BY, NW, RP, SL}, date: fixed(time.November, 1)},
	{name: "Buß- und Bettag", regions: []generic.Region{SN}, date: repentanceDay},
	{name: "1. Weihnachtstag", date: fixed(time.December, 25)},
	{name: "2. Weihnachtstag", date: fixed(time.December, 26)},

	{name: "Karfreitag", date: easterOffset(-2)},
	{name: "Ostermontag", date: easterOffset(1)},
	{name: "Christi Himmelfahrt", date: easterOffset(39)},
	{name: "Pfingstmontag", date: easterOffset(50)},
	{name: "Fronleichnam", regions: []generic.Region{BW, BY, HE, NW, RP, SL}, date: easterOffset(60)},
}

// =============================================================================
// EASTER
// =============================================================================

// ComputeEaster returns Easter Sunday of the Gregorian calendar (Gauss).
func ComputeEaster(year int) generic.TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return generic.NewTimePoint(year, time.Month(month), day)
}

// =============================================================================
// LOOKUP
// =============================================================================

// Holidays returns the statutory holidays of year observed in region, sorted.
// An unknown or empty region yields only the nationwide holidays.
func Holidays(year int, region generic.Region) []generic.Holiday {
	out := make([]generic.Holiday, 0, len(rules))
	for _, r := range rules {
		h := generic.Holiday{Date: r.date(year), Name: r.name, Regions: r.regions}
		if h.AppliesTo(region) {
			out = append(out, h)
		}
	}
	generic.SortHolidays(out)
	return out
}

// GetHolidays returns date -> name for year in region. Holidays that fall on
// the same date are joined as "A / B".
func GetHolidays(year int, region generic.Region) map[generic.TimePoint]string {
	return byDate(Holidays(year, region))
}

// IsHoliday reports whether date is a statutory holiday in region and its name.
func IsHoliday(date generic.TimePoint, region generic.Region) (string, bool) {
	name, ok := GetHolidays(date.Year(), region)[date]
	return name, ok
}

// IsWeekend reports whether date is a Saturday or Sunday.
func IsWeekend(date generic.TimePoint) bool {
	return date.IsWeekend()
}

func byDate(hs []generic.Holiday) map[generic.TimePoint]string {
	out := make(map[generic.TimePoint]string, len(hs))
	names := make(map[generic.TimePoint][]string, len(hs))
	for _, h := range hs {
		if containsName(names[h.Date], h.Name) {
			continue
		}
		names[h.Date] = append(names[h.Date], h.Name)
	}
	for date, ns := range names {
		out[date] = strings.Join(ns, " / ")
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
