// Package dates holds the calendar-day primitives the classifier builds on.
// Every comparison works at day granularity on the wall-clock date of each
// value; callers are expected to have localized times upstream.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Equal reports whether a and b fall on the same calendar day.
func Equal(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}

// Before reports whether a's calendar day precedes b's.
func Before(a, b time.Time) bool {
	return dayKey(a) < dayKey(b)
}

// After reports whether a's calendar day follows b's.
func After(a, b time.Time) bool {
	return dayKey(a) > dayKey(b)
}

// Between reports whether candidate lies strictly between a and b, in
// either order.
func Between(a, b, candidate time.Time) bool {
	return (After(candidate, a) && Before(candidate, b)) ||
		(Before(candidate, a) && After(candidate, b))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts t by n calendar days, keeping wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekOf returns the first and last day of the week containing t.
func WeekOf(t time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	day := StartOfDay(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	first := day.AddDate(0, 0, -diff)
	return first, first.AddDate(0, 0, 6)
}

// Today returns midnight of now's date in loc. A nil loc means time.Local.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return StartOfDay(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month and returns its first day in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// ParseWeekStart maps "monday"/"sunday" to a weekday; anything else is
// treated as monday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// ResolveLocation loads an IANA zone, falling back to time.Local.
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
