package tracking

import (
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

// Average is the mean of bucket hours, rounded to 0.1.
func Average(buckets []Bucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	return generic.Round1(sumHours(buckets) / float64(len(buckets)))
}

// AverageForWorkDays averages hours over the buckets that start on a
// scheduled work day on or after the employment start.
func AverageForWorkDays(buckets []Bucket, user timeoff.User) float64 {
	wd := workDayBuckets(buckets, user)
	if len(wd) == 0 {
		return 0
	}
	return generic.Round1(sumHours(wd) / float64(len(wd)))
}

// AverageTargetForWorkDays is AverageForWorkDays over target hours.
func AverageTargetForWorkDays(buckets []Bucket, user timeoff.User) float64 {
	wd := workDayBuckets(buckets, user)
	if len(wd) == 0 {
		return 0
	}
	return generic.Round1(sumTarget(wd) / float64(len(wd)))
}

// TotalHours sums bucket hours, rounded to 0.1.
func TotalHours(buckets []Bucket) float64 { return generic.Round1(sumHours(buckets)) }

// TotalTarget sums bucket target hours, rounded to 0.1.
func TotalTarget(buckets []Bucket) float64 { return generic.Round1(sumTarget(buckets)) }

// FormatRange renders a period as "02.01.2006 - 08.01.2006".
func FormatRange(p generic.Period) string {
	const layout = "02.01.2006"
	return p.Start.Time.Format(layout) + " - " + p.End.Time.Format(layout)
}

func workDayBuckets(buckets []Bucket, user timeoff.User) []Bucket {
	schedule := user.Schedule()
	var out []Bucket
	for _, b := range buckets {
		if schedule.IsWorkDay(b.Period.Start) && user.EmployedOn(b.Period.Start) {
			out = append(out, b)
		}
	}
	return out
}

func sumHours(buckets []Bucket) float64 {
	s := 0.0
	for _, b := range buckets {
		s += b.Hours
	}
	return s
}

func sumTarget(buckets []Bucket) float64 {
	s := 0.0
	for _, b := range buckets {
		s += b.TargetHours
	}
	return s
}
