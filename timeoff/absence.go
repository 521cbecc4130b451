package timeoff

import (
	"github.com/shopspring/decimal"

	"github.com/warp/worktime-engine/generic"
)

// AbsencesOf returns the requests owned by userID.
func AbsencesOf(absences []AbsenceRequest, userID generic.EntityID) []AbsenceRequest {
	var out []AbsenceRequest
	for _, a := range absences {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// FirstApprovedOn returns the first approved request of userID that covers date.
func FirstApprovedOn(absences []AbsenceRequest, userID generic.EntityID, date generic.TimePoint) (AbsenceRequest, bool) {
	for _, a := range absences {
		if a.UserID == userID && a.IsApproved() && a.Covers(date) {
			return a, true
		}
	}
	return AbsenceRequest{}, false
}

// FirstApprovedIn returns the first approved request of userID overlapping period.
func FirstApprovedIn(absences []AbsenceRequest, userID generic.EntityID, period generic.Period) (AbsenceRequest, bool) {
	for _, a := range absences {
		if a.UserID == userID && a.IsApproved() && a.Period().Overlaps(period) {
			return a, true
		}
	}
	return AbsenceRequest{}, false
}

var half = decimal.NewFromFloat(0.5)

// DaysCharged is how many days a request costs: 0.5 for a half day, otherwise
// the scheduled work days in its range.
func DaysCharged(a AbsenceRequest, schedule generic.WorkSchedule) generic.Amount {
	if a.IsHalfDay() {
		return generic.Amount{Value: half, Unit: generic.UnitDays}
	}
	return generic.NewAmountFromInt(WorkDays(a.Period(), schedule), generic.UnitDays)
}
