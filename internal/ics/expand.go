package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	"dpcal/internal/dates"
	appLog "dpcal/internal/log"
	"dpcal/internal/rules"
)

const maxOccurrencesPerEvent = 5000

// EventDays returns every calendar day in [from, to] touched by at least
// one occurrence of events. Days are expressed in from's location; all-day
// events keep their calendar date regardless of zone.
func EventDays(events []Event, from, to time.Time) rules.DaySet {
	loc := from.Location()
	out := make(rules.DaySet)
	first := dates.StartOfDay(from)
	last := dates.StartOfDay(to.In(loc))

	for _, ev := range events {
		for _, start := range occurrences(ev, first, to) {
			for _, d := range coveredDays(ev, start, loc) {
				if dates.Before(d, first) || dates.After(d, last) {
					continue
				}
				out.Add(d)
			}
		}
	}
	return out
}

// occurrences lists the start times of ev that may overlap [from, to].
func occurrences(ev Event, from, to time.Time) []time.Time {
	if ev.RRule == "" {
		return []time.Time{ev.Start}
	}

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		appLog.Warn("skipping unparsable RRULE", "uid", ev.UID, "rrule", ev.RRule, "reason", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Occurrences starting before the window can still spill into it.
	lookback := from.Add(-ev.End.Sub(ev.Start)).AddDate(0, 0, -1)
	starts := set.Between(lookback.In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		appLog.Warn("truncating recurring event", "uid", ev.UID, "cap", maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}
	return starts
}

// coveredDays lists the days an occurrence starting at start spans.
func coveredDays(ev Event, start time.Time, loc *time.Location) []time.Time {
	dur := ev.End.Sub(ev.Start)

	if ev.AllDay {
		y, m, d := start.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		n := int((dur + 12*time.Hour) / (24 * time.Hour))
		if n < 1 {
			n = 1
		}
		out := make([]time.Time, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, day.AddDate(0, 0, i))
		}
		return out
	}

	startLocal := start.In(loc)
	endLocal := start.Add(dur).In(loc)
	out := []time.Time{dates.StartOfDay(startLocal)}
	// An end at exactly midnight does not touch that day.
	for d := dates.AddDays(out[0], 1); d.Before(endLocal); d = dates.AddDays(d, 1) {
		out = append(out, d)
	}
	return out
}
