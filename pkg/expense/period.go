package expense

import "time"

// Period selects the date window of a report.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// InPeriod reports whether date falls inside the given period relative to now.
// Day, month and year compare calendar fields. The week window is
// [most recent Monday at midnight, now], so a row dated the prior Sunday is
// excluded regardless of the time of day.
func InPeriod(period Period, date time.Time, now time.Time) bool {
	switch period {
	case PeriodDay:
		return sameDay(date, now)
	case PeriodWeek:
		start := startOfWeek(now)
		return !date.Before(start) && !date.After(now)
	case PeriodMonth:
		return date.Year() == now.Year() && date.Month() == now.Month()
	case PeriodYear:
		return date.Year() == now.Year()
	default:
		return true
	}
}

// startOfWeek returns Monday 00:00 of the week containing t, in t's location.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	daysSinceMonday := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -daysSinceMonday)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
