package timeoff

import "github.com/warp/worktime-engine/generic"

// WorkDays counts the days in period that fall on a scheduled weekday.
// Holidays are not subtracted.
func WorkDays(period generic.Period, schedule generic.WorkSchedule) int {
	n := 0
	for _, day := range period.Days() {
		if schedule.IsWorkDay(day) {
			n++
		}
	}
	return n
}
