/*
Package factory provides JSON to Go work schedule conversion.

PURPOSE:
  Converts JSON work schedule definitions into generic.WorkSchedule values.
  Schedules are stored as JSON on the user record, so a new part-time
  arrangement needs no code change.

JSON SCHEMA:
  {
    "monday": true,
    "tuesday": true,
    "wednesday": true,
    "thursday": true,
    "friday": true,
    "saturday": false,
    "sunday": false,
    "hours_per_day": 8,
    "vacation_days_per_year": 30
  }

  A weekday list is accepted as an alternative to the seven flags:
    {"days": ["mon", "wed", "fri"], "hours_per_day": 6}

KEY FEATURES:
  - Validates hours and vacation ranges
  - Missing hours default to 8, missing vacation to 30
  - Rejects a schedule without any work day

USAGE:
  f := NewScheduleFactory()
  schedule, err := f.ParseSchedule(`{"days":["mon","tue"],"hours_per_day":4}`)

SEE ALSO:
  - generic/schedule.go: WorkSchedule type definition
  - store/sqlite: Stores the JSON on the users table
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a work schedule.
type ScheduleJSON struct {
	Monday              bool     `json:"monday"`
	Tuesday             bool     `json:"tuesday"`
	Wednesday           bool     `json:"wednesday"`
	Thursday            bool     `json:"thursday"`
	Friday              bool     `json:"friday"`
	Saturday            bool     `json:"saturday"`
	Sunday              bool     `json:"sunday"`
	Days                []string `json:"days,omitempty"`
	HoursPerDay         *float64 `json:"hours_per_day,omitempty"`
	VacationDaysPerYear *float64 `json:"vacation_days_per_year,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedules to Go structs.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule parses a JSON string into a WorkSchedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (*generic.WorkSchedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse schedule JSON: %w: %v", generic.ErrInvalidSchedule, err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts ScheduleJSON to a validated WorkSchedule.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (*generic.WorkSchedule, error) {
	s := generic.WorkSchedule{
		Monday:              sj.Monday,
		Tuesday:             sj.Tuesday,
		Wednesday:           sj.Wednesday,
		Thursday:            sj.Thursday,
		Friday:              sj.Friday,
		Saturday:            sj.Saturday,
		Sunday:              sj.Sunday,
		HoursPerDay:         generic.DefaultHoursPerDay,
		VacationDaysPerYear: generic.DefaultVacationDaysPerYear,
	}

	if len(sj.Days) > 0 {
		days, err := parseWeekdays(sj.Days)
		if err != nil {
			return nil, err
		}
		listed := generic.ScheduleForWeekdays(days, 0, 0)
		s.Monday, s.Tuesday, s.Wednesday = listed.Monday, listed.Tuesday, listed.Wednesday
		s.Thursday, s.Friday, s.Saturday, s.Sunday = listed.Thursday, listed.Friday, listed.Saturday, listed.Sunday
	}

	if sj.HoursPerDay != nil {
		if *sj.HoursPerDay <= 0 || *sj.HoursPerDay > 24 {
			return nil, fmt.Errorf("%w: hours_per_day must be in (0, 24], got %v", generic.ErrInvalidSchedule, *sj.HoursPerDay)
		}
		s.HoursPerDay = *sj.HoursPerDay
	}
	if sj.VacationDaysPerYear != nil {
		if *sj.VacationDaysPerYear < 0 || *sj.VacationDaysPerYear > 366 {
			return nil, fmt.Errorf("%w: vacation_days_per_year must be in [0, 366], got %v", generic.ErrInvalidSchedule, *sj.VacationDaysPerYear)
		}
		s.VacationDaysPerYear = *sj.VacationDaysPerYear
	}

	if s.WorkDaysPerWeek() == 0 {
		return nil, fmt.Errorf("%w: no work day selected", generic.ErrInvalidSchedule)
	}
	return &s, nil
}

// ToJSON converts a WorkSchedule to ScheduleJSON using the seven flags.
func (f *ScheduleFactory) ToJSON(s generic.WorkSchedule) ScheduleJSON {
	hours, vacation := s.HoursPerDay, s.VacationDaysPerYear
	return ScheduleJSON{
		Monday:              s.Monday,
		Tuesday:             s.Tuesday,
		Wednesday:           s.Wednesday,
		Thursday:            s.Thursday,
		Friday:              s.Friday,
		Saturday:            s.Saturday,
		Sunday:              s.Sunday,
		HoursPerDay:         &hours,
		VacationDaysPerYear: &vacation,
	}
}

// Marshal renders a WorkSchedule as a JSON string.
func (f *ScheduleFactory) Marshal(s generic.WorkSchedule) (string, error) {
	b, err := json.Marshal(f.ToJSON(s))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday, "mo": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday, "di": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday, "mi": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday, "do": time.Thursday,
	"fri": time.Friday, "friday": time.Friday, "fr": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday, "sa": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday, "so": time.Sunday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", generic.ErrInvalidSchedule, n)
		}
		out = append(out, wd)
	}
	return out, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// FullTimeJSON is Mon-Fri at hoursPerDay with the given vacation days.
func FullTimeJSON(hoursPerDay, vacationDays float64) string {
	return fmt.Sprintf(`{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
		"saturday": false, "sunday": false,
		"hours_per_day": %v,
		"vacation_days_per_year": %v
	}`, hoursPerDay, vacationDays)
}

// PartTimeJSON works only the listed weekdays ("mon", "tue", ...).
func PartTimeJSON(days []string, hoursPerDay, vacationDays float64) string {
	quoted := make([]string, len(days))
	for i, d := range days {
		quoted[i] = fmt.Sprintf("%q", d)
	}
	return fmt.Sprintf(`{"days": [%s], "hours_per_day": %v, "vacation_days_per_year": %v}`,
		strings.Join(quoted, ", "), hoursPerDay, vacationDays)
}
