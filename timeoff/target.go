package timeoff

import (
	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// TARGET HOURS
// =============================================================================

// TargetHoursCalculator computes expected working hours over a range of days.
type TargetHoursCalculator struct {
	Holidays generic.HolidayCalendar
}

// Calculate walks period day by day. A day contributes HoursPerDay when it is
// a scheduled work day, not a holiday in region, and not covered by one of the
// user's approved vacation or sick requests. A half-day request contributes
// half of HoursPerDay on its start date.
func (c *TargetHoursCalculator) Calculate(user User, period generic.Period, absences []AbsenceRequest, region generic.Region) float64 {
	if period.IsEmpty() {
		return 0
	}
	schedule := user.Schedule()
	holidays := generic.NewHolidayLookup(c.Holidays, region)

	total := 0.0
	for _, day := range period.Days() {
		if !schedule.IsWorkDay(day) || holidays.IsHoliday(day) {
			continue
		}
		total += schedule.HoursPerDay * dayFactor(absences, user.ID, day)
	}
	return total
}

// dayFactor is the fraction of the day still expected to be worked. A
// full-day absence wins over any half-day request on the same date.
func dayFactor(absences []AbsenceRequest, userID generic.EntityID, day generic.TimePoint) float64 {
	factor := 1.0
	for _, a := range absences {
		if a.UserID != userID || !a.IsApproved() || !a.Type.ReducesTarget() || !a.Covers(day) {
			continue
		}
		if !a.IsHalfDay() {
			return 0
		}
		factor = 0.5
	}
	return factor
}
