/*
accrual.go - Vacation entitlement for partial years

PURPOSE:
  Scales the yearly vacation entitlement to the part of the year a person
  was employed. There is no monthly accrual: the whole (pro-rated)
  entitlement is available from the first day.

PRORATION:
  For a hire in the target year:
    entitlement x (days from hire date to Dec 31, inclusive) / days in year
  rounded to one decimal. Leap years count 366 days.

  - Hired Jan 1 with 30 days/year: 30.0
  - Hired Jul 1 2025 with 30 days/year: 30 x 184 / 365 = 15.1
  - Hired Dec 31 with 30 days/year: 0.1

  Hired before the target year: full entitlement. Hired after: 0.

SEE ALSO:
  - balance.go: Uses ProRataVacationDays for TotalEntitlement
*/
package timeoff

import (
	"github.com/shopspring/decimal"

	"github.com/warp/worktime-engine/generic"
)

// ProRataVacationDays returns the entitlement for year given the hire date.
func ProRataVacationDays(hireDate generic.TimePoint, fullEntitlement float64, year int) generic.Amount {
	full := generic.NewAmount(fullEntitlement, generic.UnitDays)
	switch {
	case hireDate.Year() < year:
		return full
	case hireDate.Year() > year:
		return full.Zero()
	}

	remaining := generic.DaysBetween(hireDate, generic.EndOfYear(year)) + 1
	return full.
		Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(generic.DaysInYear(year)))).
		Round(1)
}

// Entitlement returns the user's vacation entitlement for year.
func Entitlement(user User, year int) generic.Amount {
	schedule := user.Schedule()
	if user.EmploymentStartDate == nil {
		return generic.NewAmount(schedule.VacationDaysPerYear, generic.UnitDays)
	}
	return ProRataVacationDays(*user.EmploymentStartDate, schedule.VacationDaysPerYear, year)
}
