package model

import "time"

// Day is a single calendar cell as produced by the page builder.
// Current is false for offset days borrowed from adjacent months to fill
// the grid.
type Day struct {
	Value   time.Time
	Current bool
}

// Offset reports whether the day belongs to an adjacent month.
func (d Day) Offset() bool { return !d.Current }

// SelectionKind discriminates the Selection variant.
type SelectionKind int

const (
	SelectionEmpty SelectionKind = iota
	SelectionSingle
	SelectionRange
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionSingle:
		return "single"
	case SelectionRange:
		return "range"
	default:
		return "empty"
	}
}

// Selection is the picker's current value: nothing, one date, or a range
// whose end is present only once both ends were picked. Range boundaries
// are kept in click order; Start may be after End.
type Selection struct {
	kind   SelectionKind
	first  time.Time
	end    time.Time
	hasEnd bool
}

// Empty returns a selection with nothing picked.
func Empty() Selection { return Selection{} }

// Single returns a one-date selection.
func Single(d time.Time) Selection {
	return Selection{kind: SelectionSingle, first: d}
}

// Range returns a range selection. A nil end means the user has picked
// only the first boundary.
func Range(start time.Time, end *time.Time) Selection {
	s := Selection{kind: SelectionRange, first: start}
	if end != nil {
		s.end = *end
		s.hasEnd = true
	}
	return s
}

// RangeOf is shorthand for a completed range.
func RangeOf(start, end time.Time) Selection {
	return Range(start, &end)
}

func (s Selection) Kind() SelectionKind { return s.kind }

func (s Selection) IsEmpty() bool { return s.kind == SelectionEmpty }

// First returns the single date or the range start.
func (s Selection) First() (time.Time, bool) {
	if s.kind == SelectionEmpty {
		return time.Time{}, false
	}
	return s.first, true
}

// Start returns the range start; false for non-range selections.
func (s Selection) Start() (time.Time, bool) {
	if s.kind != SelectionRange {
		return time.Time{}, false
	}
	return s.first, true
}

// End returns the range end; false until the second boundary is picked.
func (s Selection) End() (time.Time, bool) {
	if s.kind != SelectionRange || !s.hasEnd {
		return time.Time{}, false
	}
	return s.end, true
}

// Complete reports whether both range boundaries are set.
func (s Selection) Complete() bool {
	return s.kind == SelectionRange && s.hasEnd
}

// Pending reports whether a range has its start but not its end.
func (s Selection) Pending() bool {
	return s.kind == SelectionRange && !s.hasEnd
}
