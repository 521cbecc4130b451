package timeoff_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

func TestParseAbsenceType(t *testing.T) {
	got, err := timeoff.ParseAbsenceType(" Vacation ")
	require.NoError(t, err)
	assert.Equal(t, timeoff.AbsenceVacation, got)

	_, err = timeoff.ParseAbsenceType("holiday")
	assert.True(t, errors.Is(err, generic.ErrInvalidEntry))
}

func TestParseAbsenceStatus_DefaultsToPending(t *testing.T) {
	got, err := timeoff.ParseAbsenceStatus("")
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusPending, got)
}

func TestAbsence_HalfDayCoversStartOnly(t *testing.T) {
	a := timeoff.AbsenceRequest{StartDate: date(2025, time.March, 3), EndDate: date(2025, time.March, 5), HalfDay: timeoff.HalfAfternoon}

	assert.True(t, a.Covers(date(2025, time.March, 3)))
	assert.False(t, a.Covers(date(2025, time.March, 4)))
	assertAmount(t, 0.5, timeoff.DaysCharged(a, generic.DefaultWorkSchedule()))
}

func TestAbsence_InvertedRangeIsEmpty(t *testing.T) {
	a := timeoff.AbsenceRequest{StartDate: date(2025, time.March, 5), EndDate: date(2025, time.March, 3)}

	assert.False(t, a.Covers(date(2025, time.March, 4)))
	assertAmount(t, 0, timeoff.DaysCharged(a, generic.DefaultWorkSchedule()))
}

func TestTimeEntry_Text(t *testing.T) {
	e := timeoff.TimeEntry{TaskTitle: "Dreh", ProjectName: "Spot", Note: "Außen"}
	assert.Equal(t, "Dreh Spot Außen", e.Text())
	assert.True(t, e.IsRunning())
}

func TestUser_Defaults(t *testing.T) {
	u := timeoff.User{ID: "u1"}
	assert.True(t, u.IsActive())
	assert.Equal(t, generic.DefaultWorkSchedule(), u.Schedule())
	assert.True(t, u.EmployedOn(date(1990, time.January, 1)))

	start := date(2025, time.May, 1)
	u.EmploymentStartDate = &start
	assert.False(t, u.EmployedOn(date(2025, time.April, 30)))
}
