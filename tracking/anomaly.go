package tracking

import (
	"sort"
	"strings"
	"time"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

// =============================================================================
// ANOMALY TYPES
// =============================================================================

type AnomalyType string

const (
	MissingEntry      AnomalyType = "MISSING_ENTRY"
	ExcessWorkShoot   AnomalyType = "EXCESS_WORK_SHOOT"
	ExcessWorkRegular AnomalyType = "EXCESS_WORK_REGULAR"
	UnderPerformance  AnomalyType = "UNDER_PERFORMANCE"
	ForgotToStop      AnomalyType = "FORGOT_TO_STOP"
)

// AnomalyTypes lists every type in rule order.
var AnomalyTypes = []AnomalyType{MissingEntry, ExcessWorkShoot, ExcessWorkRegular, UnderPerformance, ForgotToStop}

type AnomalyDetails struct {
	TrackedHours float64
	TargetHours  float64
	HasShoot     bool
}

// Anomaly is one finding for one user on one day.
type Anomaly struct {
	Date    generic.TimePoint
	UserID  generic.EntityID
	Type    AnomalyType
	Details AnomalyDetails
	EntryID string // set for FORGOT_TO_STOP
}

// =============================================================================
// SHOOT CLASSIFIER
// =============================================================================

// ShootClassifier decides whether an entry belongs to a shoot/production day.
type ShootClassifier func(timeoff.TimeEntry) bool

// DefaultShootKeywords match German shoot and production task names.
var DefaultShootKeywords = []string{"dreh", "produktion"}

// KeywordClassifier matches any keyword case-insensitively in the entry's free text.
func KeywordClassifier(keywords ...string) ShootClassifier {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return func(e timeoff.TimeEntry) bool {
		text := strings.ToLower(e.Text())
		for _, k := range lowered {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}

// =============================================================================
// THRESHOLDS
// =============================================================================

// Thresholds tune the rules. Zero fields take the defaults.
type Thresholds struct {
	ShootMaxHours         float64 // EXCESS_WORK_SHOOT above this
	RegularMaxHours       float64 // EXCESS_WORK_REGULAR above this
	UnderPerformanceRatio float64 // UNDER_PERFORMANCE below ratio x daily target
	NightWindowEndHour    int     // FORGOT_TO_STOP window is 00:00 to this hour
	MinNightHours         float64 // hours required inside the window and in total
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ShootMaxHours:         15,
		RegularMaxHours:       9,
		UnderPerformanceRatio: 0.5,
		NightWindowEndHour:    6,
		MinNightHours:         6,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ShootMaxHours <= 0 {
		t.ShootMaxHours = d.ShootMaxHours
	}
	if t.RegularMaxHours <= 0 {
		t.RegularMaxHours = d.RegularMaxHours
	}
	if t.UnderPerformanceRatio <= 0 {
		t.UnderPerformanceRatio = d.UnderPerformanceRatio
	}
	if t.NightWindowEndHour <= 0 || t.NightWindowEndHour > 24 {
		t.NightWindowEndHour = d.NightWindowEndHour
	}
	if t.MinNightHours <= 0 {
		t.MinNightHours = d.MinNightHours
	}
	return t
}

// =============================================================================
// DETECTOR
// =============================================================================

// Detector scans days for anomalies. The zero value uses no holidays, the
// default keywords and thresholds, Europe/Berlin and the wall clock.
type Detector struct {
	Holidays   generic.HolidayCalendar
	Classifier ShootClassifier
	Thresholds Thresholds
	Location   *time.Location
	Now        func() time.Time
}

// dayContext is everything the rules need to know about one day.
type dayContext struct {
	date       generic.TimePoint
	tracked    float64
	hasShoot   bool
	isWorkDay  bool
	isHoliday  bool
	hasAbsence bool
	target     float64
	isPast     bool
}

func (c dayContext) details() AnomalyDetails {
	return AnomalyDetails{TrackedHours: c.tracked, TargetHours: c.target, HasShoot: c.hasShoot}
}

// Detect scans every day of period up to and including today. Rules are
// independent, so one day may carry several anomalies.
func (d *Detector) Detect(user timeoff.User, entries []timeoff.TimeEntry, absences []timeoff.AbsenceRequest, period generic.Period, region generic.Region) []Anomaly {
	loc := d.location()
	now := d.now()
	today := generic.Today(now, loc)
	th := d.Thresholds.withDefaults()
	classify := d.classifier()
	schedule := user.Schedule()
	holidays := generic.NewHolidayLookup(d.Holidays, region)

	byDay := make(map[generic.TimePoint][]timeoff.TimeEntry)
	for _, e := range entries {
		if e.UserID == user.ID {
			day := e.StartDate(loc)
			byDay[day] = append(byDay[day], e)
		}
	}

	var out []Anomaly
	for _, day := range period.Days() {
		if day.After(today) {
			break
		}
		daily := byDay[day]

		var seconds int64
		shoot := false
		for _, e := range daily {
			seconds += e.Duration
			shoot = shoot || classify(e)
		}
		_, absent := timeoff.FirstApprovedOn(absences, user.ID, day)

		ctx := dayContext{
			date:       day,
			tracked:    generic.Round1(float64(seconds) / 3600),
			hasShoot:   shoot,
			isWorkDay:  schedule.IsWorkDay(day),
			isHoliday:  holidays.IsHoliday(day),
			hasAbsence: absent,
			target:     schedule.HoursPerDay,
			isPast:     day.Before(today),
		}

		for _, typ := range evaluate(ctx, th) {
			out = append(out, Anomaly{Date: day, UserID: user.ID, Type: typ, Details: ctx.details()})
		}
		if e, ok := forgotToStop(daily, day, now, loc, th); ok {
			out = append(out, Anomaly{Date: day, UserID: user.ID, Type: ForgotToStop, Details: ctx.details(), EntryID: e.ID})
		}
	}
	return out
}

// DetectAll runs Detect for every active user and orders the result by date,
// then user, then rule order.
func (d *Detector) DetectAll(users []timeoff.User, entries []timeoff.TimeEntry, absences []timeoff.AbsenceRequest, period generic.Period, region generic.Region) []Anomaly {
	var out []Anomaly
	for _, u := range users {
		if !u.IsActive() {
			continue
		}
		out = append(out, d.Detect(u, entries, absences, period, region)...)
	}
	rank := make(map[AnomalyType]int, len(AnomalyTypes))
	for i, t := range AnomalyTypes {
		rank[t] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return rank[a.Type] < rank[b.Type]
	})
	return out
}

// CountByType tallies anomalies per type.
func CountByType(anomalies []Anomaly) map[AnomalyType]int {
	out := make(map[AnomalyType]int)
	for _, a := range anomalies {
		out[a.Type]++
	}
	return out
}

// =============================================================================
// RULES
// =============================================================================

func evaluate(c dayContext, th Thresholds) []AnomalyType {
	var found []AnomalyType
	expected := c.isPast && c.isWorkDay && !c.isHoliday && !c.hasAbsence

	if expected && c.tracked == 0 {
		found = append(found, MissingEntry)
	}
	if c.tracked > 0 && c.hasShoot && c.tracked > th.ShootMaxHours {
		found = append(found, ExcessWorkShoot)
	}
	if c.tracked > 0 && !c.hasShoot && c.tracked > th.RegularMaxHours {
		found = append(found, ExcessWorkRegular)
	}
	if expected && c.tracked > 0 && c.tracked < th.UnderPerformanceRatio*c.target {
		found = append(found, UnderPerformance)
	}
	return found
}

// forgotToStop finds an entry started on day that ran through the night
// window of the following day. A running entry uses now as its end. The
// window is measured in wall-clock hours, so on a DST night the required
// overlap is capped at the window's real length.
func forgotToStop(daily []timeoff.TimeEntry, day generic.TimePoint, now time.Time, loc *time.Location, th Thresholds) (timeoff.TimeEntry, bool) {
	next := day.AddDays(1)
	windowStart := next.StartIn(loc)
	windowEnd := next.At(th.NightWindowEndHour, loc)

	minimum := time.Duration(th.MinNightHours * float64(time.Hour))
	required := minimum
	if w := windowEnd.Sub(windowStart); w < required {
		required = w
	}

	for _, e := range daily {
		end := now
		if e.End != nil {
			end = *e.End
		}
		if end.Sub(e.Start) < minimum {
			continue
		}
		if overlap(e.Start, end, windowStart, windowEnd) >= required {
			return e, true
		}
	}
	return timeoff.TimeEntry{}, false
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start, end := aStart, aEnd
	if bStart.After(start) {
		start = bStart
	}
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

func (d *Detector) location() *time.Location {
	if d.Location == nil {
		return generic.Berlin
	}
	return d.Location
}

func (d *Detector) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Detector) classifier() ShootClassifier {
	if d.Classifier == nil {
		return KeywordClassifier(DefaultShootKeywords...)
	}
	return d.Classifier
}
