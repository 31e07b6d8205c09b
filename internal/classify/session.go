// Package classify decides which display states apply to a single
// date-picker cell on a render pass.
//
// A Session owns the only mutable state involved: the hovered date and the
// reference "today". Everything else (the selection, the mode flags, the
// highlight and disabled rules) is read on every call, so classifying the
// same cell twice without a hover change yields the same ClassData.
//
// A Session is not safe for concurrent use; hosts delivering events from
// several goroutines must serialize calls themselves.
package classify

import (
	"time"

	"dpcal/internal/dates"
	"dpcal/internal/model"
	"dpcal/internal/rules"
)

// DisabledResolver reports whether a day cannot be picked.
type DisabledResolver interface {
	IsDisabled(time.Time) bool
}

// ModelAutoFunc reports whether a model-auto picker has moved into range
// collection for the given selection.
type ModelAutoFunc func(model.Selection) bool

// DayClassFunc returns an extra tag for a day, or "" for none.
type DayClassFunc func(date time.Time) string

// Options are the picker's read-only mode flags and collaborators.
type Options struct {
	Range          bool
	AutoRange      int
	WeekPicker     bool
	WeekStart      time.Weekday
	MultiCalendars int

	HideOffsetDates bool
	ModelAuto       bool
	NoToday         bool
	// Disabled makes the whole picker read-only.
	Disabled bool

	CellClassName string
	DayClass      DayClassFunc

	Highlight rules.Highlight
	Resolver  DisabledResolver
	// ModelAutoSignal defaults to "both range boundaries are set".
	ModelAutoSignal ModelAutoFunc

	// Location is the zone "today" is computed in; nil means time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Session classifies cells for one picker instance.
type Session struct {
	opts Options

	today time.Time

	hover    time.Time
	hovering bool
}

// NewSession captures "today" once and returns a ready session. Model-auto
// and auto-range are range modes, so either one turns Range on.
func NewSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ModelAutoSignal == nil {
		opts.ModelAutoSignal = bothBoundariesSet
	}
	if opts.AutoRange < 0 {
		opts.AutoRange = 0
	}
	if opts.ModelAuto || opts.AutoRange > 0 {
		opts.Range = true
	}
	return &Session{
		opts:  opts,
		today: dates.Today(opts.Now(), opts.Location),
	}
}

func bothBoundariesSet(sel model.Selection) bool {
	return sel.Complete()
}

// Today returns the reference date captured at construction.
func (s *Session) Today() time.Time { return s.today }

// Options returns the normalized options the session runs with.
func (s *Session) Options() Options { return s.opts }

// SetHoverDate records the hovered cell. Hidden offset days are ignored.
func (s *Session) SetHoverDate(day model.Day) {
	if !day.Current && s.opts.HideOffsetDates {
		return
	}
	s.hover = day.Value
	s.hovering = true
}

// ClearHoverDate forgets the hovered cell.
func (s *Session) ClearHoverDate() {
	s.hover = time.Time{}
	s.hovering = false
}

// HoverDate returns the hovered date, if any.
func (s *Session) HoverDate() (time.Time, bool) {
	return s.hover, s.hovering
}

// DayClassData classifies one cell against the current selection. Hidden
// offset days get an empty mapping and nothing else is evaluated.
func (s *Session) DayClassData(day model.Day, sel model.Selection) ClassData {
	p := pass{s: s, sel: sel}
	if p.hiddenOffset(day) {
		return ClassData{}
	}

	out := p.sharedClasses(day)
	out.merge(p.modeClasses(day))

	if s.opts.DayClass != nil {
		if tag := s.opts.DayClass(day.Value); tag != "" {
			out[tag] = true
		}
	}
	if s.opts.CellClassName != "" {
		out[s.opts.CellClassName] = true
	}
	return out
}
