package classify

import (
	"time"

	"dpcal/internal/dates"
	"dpcal/internal/model"
	"dpcal/internal/rules"
)

// pass binds a session to the selection of one classification call.
// Guards inside each predicate run in order; reordering them changes what
// the calendar shows.
type pass struct {
	s   *Session
	sel model.Selection
}

func (p pass) hiddenOffset(day model.Day) bool {
	return p.s.opts.HideOffsetDates && !day.Current
}

func (p pass) isDisabled(day model.Day) bool {
	return p.s.opts.Resolver != nil && p.s.opts.Resolver.IsDisabled(day.Value)
}

func (p pass) rangeLike() bool {
	return p.s.opts.Range || p.s.opts.WeekPicker
}

// checkRangeDirection tells, while only the range start is picked, whether
// the hover lies after (isStart) or before (!isStart) that start. Without
// a pending range or a hover it does not constrain anything.
func (p pass) checkRangeDirection(isStart bool) bool {
	start, ok := p.sel.Start()
	if !ok || !p.sel.Pending() || !p.s.hovering {
		return true
	}
	if isStart {
		return dates.After(p.s.hover, start)
	}
	return dates.Before(p.s.hover, start)
}

// dateBetween reports whether day lies strictly inside the range, with the
// hover standing in for a missing end.
func (p pass) dateBetween(day model.Day) bool {
	if !p.rangeLike() {
		return false
	}
	start, ok := p.sel.Start()
	if !ok {
		return false
	}
	if end, ok := p.sel.End(); ok {
		return dates.Between(start, end, day.Value)
	}
	if p.s.hovering {
		return dates.Between(start, p.s.hover, day.Value)
	}
	return false
}

// rangeActiveStartEnd reports whether day is the start (isStart) or end
// anchor of the range.
func (p pass) rangeActiveStartEnd(day model.Day, isStart bool) bool {
	o := p.s.opts
	// Week rows of inactive pages never anchor.
	if o.WeekPicker && o.MultiCalendars > 0 && !day.Current {
		return false
	}

	if p.rangeLike() && p.sel.Complete() {
		if p.hiddenOffset(day) {
			return false
		}
		start, _ := p.sel.Start()
		end, _ := p.sel.End()
		if isStart {
			return dates.Equal(day.Value, start)
		}
		return dates.Equal(day.Value, end)
	}

	if o.Range && p.sel.Pending() {
		if p.hiddenOffset(day) {
			return false
		}
		start, _ := p.sel.Start()
		fixed := dates.Equal(day.Value, start)
		if isStart {
			// The first disjunct covers no hover or a hover on or before the
			// start, the second a hover after it. Together the fixed date is
			// always the start anchor of a pending range.
			return (fixed && (!p.s.hovering || !dates.After(p.s.hover, start))) ||
				(fixed && p.checkRangeDirection(true))
		}
		// No reversal guard on the end side: the fixed date doubles as the
		// end only while the hover sits before it (or nothing is hovered).
		return fixed && p.checkRangeDirection(false)
	}

	return false
}

// isActiveDate marks the selected date. Plain range pickers leave this to
// the anchors; model-auto marks the first boundary (or today before any
// pick); single-date pickers mark their value.
func (p pass) isActiveDate(day model.Day) bool {
	o := p.s.opts
	if o.ModelAuto {
		if first, ok := p.sel.First(); ok {
			return dates.Equal(day.Value, first)
		}
		return dates.Equal(day.Value, p.s.today)
	}
	if p.rangeLike() {
		return false
	}
	first, ok := p.sel.First()
	return ok && dates.Equal(day.Value, first)
}

// isHoverDateStartEnd previews the hovered cell as the start or end it
// would become, depending on which side of the fixed start it is.
func (p pass) isHoverDateStartEnd(day model.Day, isStart bool) bool {
	if !p.s.opts.Range || !p.sel.Pending() || !p.s.hovering {
		return false
	}
	return dates.Equal(day.Value, p.s.hover) && p.checkRangeDirection(isStart)
}

// dateHover reports whether the cell takes plain hover styling.
func (p pass) dateHover(day model.Day) bool {
	return !p.s.opts.WeekPicker &&
		!p.isDisabled(day) &&
		!p.isActiveDate(day) &&
		!p.hiddenOffset(day) &&
		!p.rangeActiveStartEnd(day, true) &&
		!p.rangeActiveStartEnd(day, false)
}

// autoRangeWindow returns the previewed window around the hover: the
// hovered day plus AutoRange days, or the hovered week in week-picker mode.
func (p pass) autoRangeWindow() (time.Time, time.Time, bool) {
	o := p.s.opts
	if o.AutoRange <= 0 || !p.s.hovering {
		return time.Time{}, time.Time{}, false
	}
	if o.WeekPicker {
		first, last := dates.WeekOf(p.s.hover, o.WeekStart)
		return first, last, true
	}
	return p.s.hover, dates.AddDays(p.s.hover, o.AutoRange), true
}

func (p pass) isAutoRangeStart(day model.Day) bool {
	if p.hiddenOffset(day) {
		return false
	}
	start, _, ok := p.autoRangeWindow()
	return ok && dates.Equal(day.Value, start)
}

func (p pass) isAutoRangeInBetween(day model.Day) bool {
	if p.hiddenOffset(day) {
		return false
	}
	start, end, ok := p.autoRangeWindow()
	return ok && dates.After(day.Value, start) && dates.Before(day.Value, end)
}

func (p pass) isHoverRangeEnd(day model.Day) bool {
	if p.hiddenOffset(day) {
		return false
	}
	_, end, ok := p.autoRangeWindow()
	return ok && dates.Equal(day.Value, end)
}

// isModelAutoActive gates range styling in model-auto mode until the
// picker has switched into range collection.
func (p pass) isModelAutoActive() bool {
	if !p.s.opts.ModelAuto {
		return true
	}
	return p.s.opts.ModelAutoSignal(p.sel)
}

func (p pass) isBetween(day model.Day) bool {
	if p.s.opts.MultiCalendars > 0 && !day.Current {
		return false
	}
	if !p.isModelAutoActive() {
		return false
	}
	if p.hiddenOffset(day) {
		return false
	}
	if p.isActiveDate(day) {
		return false
	}
	return p.dateBetween(day)
}

func (p pass) highlighted(day model.Day) bool {
	h := p.s.opts.Highlight
	switch h.Kind() {
	case rules.HighlightPredicate:
		return h.Func()(day.Value, p.isDisabled(day))
	case rules.HighlightRule:
		return h.Rule().MatchesDate(day.Value)
	default:
		return false
	}
}

func (p pass) highlightedWeekDay(day model.Day) bool {
	h := p.s.opts.Highlight
	switch h.Kind() {
	case rules.HighlightPredicate:
		return h.Func()(day.Value, p.isDisabled(day))
	case rules.HighlightRule:
		return h.Rule().MatchesWeekDay(day.Value)
	default:
		return false
	}
}

// disableHighlight suppresses highlighting on disabled days unless the
// rule opts them in (or the predicate accepts them).
func (p pass) disableHighlight(day model.Day) bool {
	if !p.isDisabled(day) {
		return false
	}
	h := p.s.opts.Highlight
	switch h.Kind() {
	case rules.HighlightPredicate:
		return !h.Func()(day.Value, true)
	case rules.HighlightRule:
		return !h.Rule().HighlightDisabled
	default:
		return true
	}
}
