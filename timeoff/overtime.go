package timeoff

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/worktime-engine/generic"
)

var secondsPerHour = decimal.NewFromInt(3600)

// TotalWorkedHours sums the durations of entries that start in year (civil date in loc).
func TotalWorkedHours(entries []TimeEntry, year int, loc *time.Location) generic.Amount {
	total := generic.ZeroAmount(generic.UnitHours)
	for _, e := range entries {
		if e.StartDate(loc).Year() != year {
			continue
		}
		total.Value = total.Value.Add(decimal.NewFromInt(e.Duration).Div(secondsPerHour))
	}
	return total
}

// ExpectedHours is what the schedule asks for in year:
//
//	(work days from max(Jan 1, hire date) to Dec 31 - approved absence days) x HoursPerDay
//
// Approved vacation, sick and compensatory requests starting in year count as
// absence days. Holidays are not subtracted. A hire after year expects nothing.
func ExpectedHours(absences []AbsenceRequest, schedule generic.WorkSchedule, hireDate *generic.TimePoint, year int) generic.Amount {
	span := generic.YearPeriod(year)
	if hireDate != nil {
		if hireDate.Year() > year {
			return generic.ZeroAmount(generic.UnitHours)
		}
		if hireDate.After(span.Start) {
			span.Start = *hireDate
		}
	}

	days := generic.NewAmountFromInt(WorkDays(span, schedule), generic.UnitDays)
	for _, a := range absences {
		if !a.IsApproved() || !a.Type.ReducesExpected() || a.StartDate.Year() != year {
			continue
		}
		days = days.Sub(DaysCharged(a, schedule))
	}
	return generic.Amount{
		Value: days.Value.Mul(decimal.NewFromFloat(schedule.HoursPerDay)),
		Unit:  generic.UnitHours,
	}
}

// OvertimeHours is worked minus expected hours for year; negative means undertime.
func OvertimeHours(entries []TimeEntry, absences []AbsenceRequest, schedule generic.WorkSchedule,
	hireDate *generic.TimePoint, year int, loc *time.Location) generic.Amount {
	worked := TotalWorkedHours(entries, year, loc)
	return worked.Sub(ExpectedHours(absences, schedule, hireDate, year))
}
