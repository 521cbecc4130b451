/*
errors.go - Centralized error types for the work-time engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The computations themselves are total and never fail; errors come from
  parsing inputs, looking up users and persisting records.

ERROR CATEGORIES:
  1. Parse errors - Malformed dates, schedules or query parameters
  2. Lookup errors - Unknown users or holidays
  3. Store errors - Database-level failures

USAGE:
  if errors.Is(err, generic.ErrUserNotFound) {
      writeError(w, http.StatusNotFound, "user not found", "")
  }

SEE ALSO:
  - time.go: ParseDate returns ParseError
  - store/sqlite: Wraps these errors with row context
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a requested range is inverted or too long.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidSchedule is returned when a work schedule document is malformed.
	ErrInvalidSchedule = errors.New("invalid work schedule")

	// ErrInvalidEntry is returned when a time entry or absence is malformed.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidRegion is returned for an unknown state code.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrHolidayNotFound is returned when a custom holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrEntryNotFound is returned when a time entry doesn't exist for the user.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrAbsenceNotFound is returned when an absence request doesn't exist for the user.
	ErrAbsenceNotFound = errors.New("absence request not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports which input field failed to parse.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrInvalidRegion)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrAbsenceNotFound)
}
