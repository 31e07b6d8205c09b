package classify

import (
	"sort"

	"dpcal/internal/dates"
	"dpcal/internal/model"
)

// Tags emitted by the classifier.
const (
	TagOffset          = "dp__cell_offset"
	TagPointer         = "dp__pointer"
	TagDisabled        = "dp__cell_disabled"
	TagHighlight       = "dp__cell_highlight"
	TagHighlightActive = "dp__cell_highlight_active"
	TagToday           = "dp__today"
	TagPast            = "dp--past"
	TagFuture          = "dp--future"

	TagActive    = "dp__active"
	TagDateHover = "dp__date_hover"

	TagRangeStart     = "dp__range_start"
	TagRangeEnd       = "dp__range_end"
	TagRangeBetween   = "dp__range_between"
	TagDateHoverStart = "dp__date_hover_start"
	TagDateHoverEnd   = "dp__date_hover_end"

	TagAutoRangeStart   = "dp__cell_auto_range_start"
	TagAutoRangeBetween = "dp__cell_auto_range"
	TagAutoRangeEnd     = "dp__cell_auto_range_end"
)

// ClassData maps a tag to whether it applies to the cell.
type ClassData map[string]bool

// Has reports whether tag is present and true.
func (c ClassData) Has(tag string) bool { return c[tag] }

// Names returns the applied tags in sorted order.
func (c ClassData) Names() []string {
	out := make([]string, 0, len(c))
	for k, v := range c {
		if v && k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (c ClassData) merge(other ClassData) {
	for k, v := range other {
		c[k] = v
	}
}

// sharedClasses applies to every visible cell regardless of mode.
func (p pass) sharedClasses(day model.Day) ClassData {
	o := p.s.opts
	disabled := p.isDisabled(day)
	active := p.isActiveDate(day)

	// Highlighting never shares a cell with an anchor.
	anchored := p.rangeActiveStartEnd(day, true) ||
		p.rangeActiveStartEnd(day, false) ||
		p.isAutoRangeStart(day) ||
		p.isHoverRangeEnd(day) ||
		(o.WeekPicker && p.isBetween(day))
	highlight := !p.disableHighlight(day) &&
		(p.highlighted(day) || p.highlightedWeekDay(day)) &&
		!anchored

	return ClassData{
		TagOffset:          !day.Current,
		TagPointer:         !o.Disabled && !p.hiddenOffset(day) && !disabled,
		TagDisabled:        disabled,
		TagHighlight:       highlight && !active,
		TagHighlightActive: highlight && active,
		TagToday:           !o.NoToday && dates.Equal(day.Value, p.s.today) && day.Current,
		TagPast:            dates.Before(day.Value, p.s.today),
		TagFuture:          dates.After(day.Value, p.s.today),
	}
}

// modeClasses runs exactly one of the auto-range, model-auto, range or
// single-date class sets.
func (p pass) modeClasses(day model.Day) ClassData {
	o := p.s.opts
	switch {
	case o.AutoRange > 0:
		return p.autoRangeClasses(day)
	case o.ModelAuto:
		out := p.singleClasses(day)
		out.merge(p.rangeClasses(day))
		return out
	case p.rangeLike():
		return p.rangeClasses(day)
	default:
		return p.singleClasses(day)
	}
}

func (p pass) singleClasses(day model.Day) ClassData {
	return ClassData{
		TagActive:    p.isActiveDate(day),
		TagDateHover: p.dateHover(day),
	}
}

func (p pass) rangeClasses(day model.Day) ClassData {
	return ClassData{
		TagRangeStart:     p.rangeActiveStartEnd(day, true),
		TagRangeEnd:       p.rangeActiveStartEnd(day, false),
		TagRangeBetween:   p.isBetween(day),
		TagDateHover:      p.dateHover(day),
		TagDateHoverStart: p.isHoverDateStartEnd(day, true),
		TagDateHoverEnd:   p.isHoverDateStartEnd(day, false),
	}
}

// autoRangeClasses keeps the committed range visible next to the preview.
func (p pass) autoRangeClasses(day model.Day) ClassData {
	return ClassData{
		TagRangeStart:       p.rangeActiveStartEnd(day, true),
		TagRangeEnd:         p.rangeActiveStartEnd(day, false),
		TagRangeBetween:     p.isBetween(day),
		TagDateHover:        p.dateHover(day),
		TagAutoRangeStart:   p.isAutoRangeStart(day),
		TagAutoRangeBetween: p.isAutoRangeInBetween(day),
		TagAutoRangeEnd:     p.isHoverRangeEnd(day),
	}
}
