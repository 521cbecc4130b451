// Package timeoff implements the people side of work-time accounting: users,
// their tracked time entries and absence requests, and the computations over
// them (target hours, pro-rata vacation, overtime and the yearly balance).
package timeoff

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// USER
// =============================================================================

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is a person whose time is accounted.
// WorkSchedule nil means the default Mon-Fri schedule.
type User struct {
	ID                  generic.EntityID
	Name                string
	Email               string
	Status              UserStatus
	WorkSchedule        *generic.WorkSchedule
	EmploymentStartDate *generic.TimePoint
}

// Schedule returns the effective work schedule.
func (u User) Schedule() generic.WorkSchedule {
	return generic.ScheduleOrDefault(u.WorkSchedule)
}

// IsActive reports whether the user takes part in scans. An unset status counts as active.
func (u User) IsActive() bool {
	return u.Status != UserInactive
}

// EmployedOn reports whether date is on or after the employment start.
func (u User) EmployedOn(date generic.TimePoint) bool {
	return u.EmploymentStartDate == nil || date.AfterOrEqual(*u.EmploymentStartDate)
}

// =============================================================================
// TIME ENTRY
// =============================================================================

// TimeEntry is one tracked interval. End is nil while the timer is running.
type TimeEntry struct {
	ID          string
	UserID      generic.EntityID
	Start       time.Time
	End         *time.Time
	Duration    int64 // seconds
	TaskID      string
	TaskTitle   string
	ListTitle   string
	ProjectID   string
	ProjectName string
	Note        string
	Billable    bool
}

// IsRunning reports whether the timer has not been stopped.
func (e TimeEntry) IsRunning() bool { return e.End == nil }

// Hours returns the recorded duration in hours.
func (e TimeEntry) Hours() float64 { return float64(e.Duration) / 3600 }

// StartDate is the civil day the entry belongs to.
func (e TimeEntry) StartDate(loc *time.Location) generic.TimePoint {
	return generic.DateOf(e.Start, loc)
}

// Text concatenates the free-text fields, separated by spaces.
func (e TimeEntry) Text() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{e.TaskTitle, e.ListTitle, e.ProjectName, e.Note} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// EntriesOf returns the entries owned by userID.
func EntriesOf(entries []TimeEntry, userID generic.EntityID) []TimeEntry {
	var out []TimeEntry
	for _, e := range entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// ABSENCE REQUEST
// =============================================================================

type AbsenceType string

const (
	AbsenceVacation        AbsenceType = "vacation"
	AbsenceCompensatoryDay AbsenceType = "compensatory_day"
	AbsenceSick            AbsenceType = "sick"
	AbsenceHomeOffice      AbsenceType = "home_office"
	AbsenceBusinessTrip    AbsenceType = "business_trip"
	AbsenceOther           AbsenceType = "other"
)

type AbsenceStatus string

const (
	StatusPending   AbsenceStatus = "pending"
	StatusApproved  AbsenceStatus = "approved"
	StatusRejected  AbsenceStatus = "rejected"
	StatusCancelled AbsenceStatus = "cancelled"
)

type HalfDay string

const (
	FullDay       HalfDay = ""
	HalfMorning   HalfDay = "morning"
	HalfAfternoon HalfDay = "afternoon"
)

// AbsenceRequest covers StartDate through EndDate inclusive.
type AbsenceRequest struct {
	ID        string
	UserID    generic.EntityID
	Type      AbsenceType
	Status    AbsenceStatus
	StartDate generic.TimePoint
	EndDate   generic.TimePoint
	HalfDay   HalfDay
	Reason    string
}

func (a AbsenceRequest) IsApproved() bool { return a.Status == StatusApproved }
func (a AbsenceRequest) IsHalfDay() bool  { return a.HalfDay != FullDay }

// Period is the span of days the request touches. A half-day request touches
// its start date only; an inverted range is empty.
func (a AbsenceRequest) Period() generic.Period {
	if a.IsHalfDay() {
		return generic.Day(a.StartDate)
	}
	return generic.Period{Start: a.StartDate, End: a.EndDate}
}

// Covers reports whether the request touches date.
func (a AbsenceRequest) Covers(date generic.TimePoint) bool {
	return a.Period().Contains(date)
}

// ReducesTarget reports whether an approved request of this type lowers target hours.
func (t AbsenceType) ReducesTarget() bool {
	return t == AbsenceVacation || t == AbsenceSick
}

// ReducesExpected reports whether an approved request of this type lowers the
// expected hours of the overtime computation.
func (t AbsenceType) ReducesExpected() bool {
	return t == AbsenceVacation || t == AbsenceSick || t == AbsenceCompensatoryDay
}

// =============================================================================
// PARSING
// =============================================================================

func ParseAbsenceType(s string) (AbsenceType, error) {
	switch t := AbsenceType(strings.ToLower(strings.TrimSpace(s))); t {
	case AbsenceVacation, AbsenceCompensatoryDay, AbsenceSick, AbsenceHomeOffice, AbsenceBusinessTrip, AbsenceOther:
		return t, nil
	}
	return "", &generic.ParseError{Field: "type", Value: s, Err: generic.ErrInvalidEntry}
}

func ParseAbsenceStatus(s string) (AbsenceStatus, error) {
	switch st := AbsenceStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	case "":
		return StatusPending, nil
	}
	return "", &generic.ParseError{Field: "status", Value: s, Err: generic.ErrInvalidEntry}
}

func ParseHalfDay(s string) (HalfDay, error) {
	switch h := HalfDay(strings.ToLower(strings.TrimSpace(s))); h {
	case FullDay, HalfMorning, HalfAfternoon:
		return h, nil
	}
	return "", &generic.ParseError{Field: "half_day", Value: s, Err: generic.ErrInvalidEntry}
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case UserActive, UserInactive:
		return st, nil
	case "":
		return UserActive, nil
	}
	return "", &generic.ParseError{Field: "status", Value: s, Err: generic.ErrInvalidEntry}
}

// =============================================================================
// VACATION BALANCE
// =============================================================================

// VacationBalance is the derived yearly vacation and overtime account.
// Available always equals TotalEntitlement - Used - Pending.
type VacationBalance struct {
	UserID                 generic.EntityID
	Year                   int
	TotalEntitlement       generic.Amount // days
	Used                   generic.Amount // days
	Pending                generic.Amount // days
	Available              generic.Amount // days
	OvertimeHours          generic.Amount // hours
	OvertimeDaysEquivalent generic.Amount // days
}

func (b VacationBalance) String() string {
	return fmt.Sprintf("%s/%d: %s of %s days available, overtime %sh",
		b.UserID, b.Year, b.Available.Value.StringFixed(1), b.TotalEntitlement.Value.StringFixed(1),
		b.OvertimeHours.Value.StringFixed(1))
}
