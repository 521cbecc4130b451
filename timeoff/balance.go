package timeoff

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// BALANCE ENGINE
// =============================================================================

// BalanceEngine composes entitlement, vacation usage and overtime into a VacationBalance.
type BalanceEngine struct {
	Location *time.Location // day bucketing for entries; nil = Europe/Berlin
}

// Calculate builds the balance of user for year. Entries and absences of
// other users are ignored.
//
// Used and Pending count vacation requests starting in year by status; a half
// day is 0.5, otherwise the scheduled work days of the range.
func (e *BalanceEngine) Calculate(user User, absences []AbsenceRequest, entries []TimeEntry, year int) VacationBalance {
	schedule := user.Schedule()
	own := AbsencesOf(absences, user.ID)

	used := generic.ZeroAmount(generic.UnitDays)
	pending := generic.ZeroAmount(generic.UnitDays)
	for _, a := range own {
		if a.Type != AbsenceVacation || a.StartDate.Year() != year {
			continue
		}
		switch a.Status {
		case StatusApproved:
			used = used.Add(DaysCharged(a, schedule))
		case StatusPending:
			pending = pending.Add(DaysCharged(a, schedule))
		}
	}

	entitlement := Entitlement(user, year)
	overtime := OvertimeHours(EntriesOf(entries, user.ID), own, schedule, user.EmploymentStartDate, year, e.Location)

	return VacationBalance{
		UserID:                 user.ID,
		Year:                   year,
		TotalEntitlement:       entitlement,
		Used:                   used,
		Pending:                pending,
		Available:              entitlement.Sub(used).Sub(pending),
		OvertimeHours:          overtime,
		OvertimeDaysEquivalent: generic.Amount{Value: overtime.Value.Div(decimal.NewFromFloat(schedule.HoursPerDay)), Unit: generic.UnitDays},
	}
}

// TotalAvailableDays is Available plus positive overtime in days. Negative
// overtime never reduces it.
func TotalAvailableDays(b VacationBalance) generic.Amount {
	total := b.Available
	if b.OvertimeDaysEquivalent.Value.IsPositive() {
		total = total.Add(b.OvertimeDaysEquivalent)
	}
	return total
}
