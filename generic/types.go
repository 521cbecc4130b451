/*
Package generic provides the calendar and quantity primitives of the work-time engine.

PURPOSE:
  This package contains domain-agnostic types shared by every computation:
  civil dates bucketed in Europe/Berlin, inclusive periods, weekly work
  schedules, the holiday calendar interface and decimal-backed amounts.
  Nothing here knows about users, entries or absences.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 7.5 hours, 12.5 days)
  - EntityID: Type-safe identifier of a person

DESIGN PRINCIPLES:
  1. Precision: Balances are summed with decimal.Decimal
  2. Day semantics: All bucketing happens on civil dates, never instants
  3. Totality: Empty periods and missing schedules yield zero, not errors

USAGE:
  used := generic.NewAmount(12.5, generic.UnitDays)
  left := generic.NewAmount(30, generic.UnitDays).Sub(used)

SEE ALSO:
  - time.go: TimePoint and the Berlin location
  - period.go: Inclusive date ranges
  - schedule.go: WorkSchedule and defaults
  - holiday.go: HolidayCalendar interface
*/
package generic

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always time-based for this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func ZeroAmount(unit Unit) Amount { return Amount{Value: decimal.Zero, Unit: unit} }

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }

// Div divides by s; dividing by zero yields zero.
func (a Amount) Div(s decimal.Decimal) Amount {
	if s.IsZero() {
		return a.Zero()
	}
	return Amount{Value: a.Value.Div(s), Unit: a.Unit}
}

func (a Amount) Zero() Amount { return Amount{Value: decimal.Zero, Unit: a.Unit} }

// Round rounds half away from zero to places decimals.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// Float returns the value as float64 for presentation.
func (a Amount) Float() float64 {
	f, _ := a.Value.Float64()
	return f
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
