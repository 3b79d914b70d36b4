package model

import "time"

// DaysPerWeek is used for week arithmetic on anchored dates.
const DaysPerWeek = 7

// WeekStart truncates t to the start of its week in UTC, anchored on the
// given weekday (the Monday of the ISO week by default).
func WeekStart(t time.Time, anchor time.Weekday) time.Time {
	t = t.UTC()
	days := int(t.Weekday()-anchor+DaysPerWeek) % DaysPerWeek
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -days)
}

// AddWeeks shifts an anchored week start by n weeks.
func AddWeeks(week time.Time, n int) time.Time {
	return week.AddDate(0, 0, n*DaysPerWeek)
}

// WeeksBetween returns the number of whole weeks from a to b. Negative when
// b precedes a. Both must be anchored week starts.
func WeeksBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / (24 * DaysPerWeek))
}

// WeekContains reports whether t falls within the 7-day span starting at week.
func WeekContains(week time.Time, t time.Time) bool {
	t = t.UTC()
	return !t.Before(week) && t.Before(AddWeeks(week, 1))
}
