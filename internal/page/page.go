// Package page lays out month grids for the host surfaces.
package page

import (
	"time"

	"dpcal/internal/dates"
	"dpcal/internal/model"
)

// GridDays is the fixed cell count of a month page: six weeks.
const GridDays = 42

// Month is one calendar page.
type Month struct {
	// First is midnight on the 1st of the month.
	First time.Time
	Days  []model.Day
}

// Build returns the six-week grid for the month containing t, starting on
// weekStart. Days outside the month come back with Current false.
func Build(t time.Time, weekStart time.Weekday) Month {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	gridStart, _ := dates.WeekOf(first, weekStart)

	days := make([]model.Day, 0, GridDays)
	for i := 0; i < GridDays; i++ {
		day := gridStart.AddDate(0, 0, i)
		days = append(days, model.Day{
			Value:   day,
			Current: day.Month() == first.Month() && day.Year() == first.Year(),
		})
	}
	return Month{First: first, Days: days}
}

// Pages returns count consecutive months starting at the month of t.
// count below one yields a single page.
func Pages(t time.Time, count int, weekStart time.Weekday) []Month {
	if count < 1 {
		count = 1
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	out := make([]Month, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Build(first.AddDate(0, i, 0), weekStart))
	}
	return out
}

// Weeks splits the grid into rows of seven.
func (m Month) Weeks() [][]model.Day {
	rows := make([][]model.Day, 0, len(m.Days)/7)
	for i := 0; i+7 <= len(m.Days); i += 7 {
		rows = append(rows, m.Days[i:i+7])
	}
	return rows
}

// Header returns the two-letter weekday labels in grid order.
func Header(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = ((weekStart + time.Weekday(i)) % 7).String()[:2]
	}
	return out
}
