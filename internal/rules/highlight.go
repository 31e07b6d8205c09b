package rules

import (
	"errors"
	"fmt"
	"time"

	"dpcal/internal/config"
	"dpcal/internal/dates"
)

// HighlightFunc decides highlighting for a day. disabled tells the
// predicate whether the day is disabled so it can opt such days in.
type HighlightFunc func(date time.Time, disabled bool) bool

// HighlightKind discriminates the Highlight variant.
type HighlightKind int

const (
	HighlightNone HighlightKind = iota
	HighlightPredicate
	HighlightRule
)

func (k HighlightKind) String() string {
	switch k {
	case HighlightPredicate:
		return "predicate"
	case HighlightRule:
		return "rule"
	default:
		return "none"
	}
}

// Rule is the declarative highlight form.
type Rule struct {
	// Dates is matched by calendar day.
	Dates DaySet
	// DatesFunc, when set, is consulted in addition to Dates.
	DatesFunc func(time.Time) bool
	// WeekDays is matched by day of week.
	WeekDays []time.Weekday
	// HighlightDisabled keeps highlighting on disabled days.
	HighlightDisabled bool
}

// MatchesDate reports whether the rule's date list or date predicate
// covers t.
func (r Rule) MatchesDate(t time.Time) bool {
	if r.Dates.Has(t) {
		return true
	}
	return r.DatesFunc != nil && r.DatesFunc(t)
}

// MatchesWeekDay reports whether t falls on one of the rule's weekdays.
func (r Rule) MatchesWeekDay(t time.Time) bool {
	wd := t.Weekday()
	for _, d := range r.WeekDays {
		if d == wd {
			return true
		}
	}
	return false
}

// Highlight is either a predicate or a declarative Rule. The zero value
// highlights nothing.
type Highlight struct {
	kind HighlightKind
	fn   HighlightFunc
	rule Rule
}

func NoHighlight() Highlight { return Highlight{} }

func Predicate(fn HighlightFunc) Highlight {
	if fn == nil {
		return Highlight{}
	}
	return Highlight{kind: HighlightPredicate, fn: fn}
}

func FromRule(r Rule) Highlight {
	return Highlight{kind: HighlightRule, rule: r}
}

func (h Highlight) Kind() HighlightKind { return h.kind }

// Func returns the predicate; nil unless Kind is HighlightPredicate.
func (h Highlight) Func() HighlightFunc { return h.fn }

// Rule returns the declarative rule; zero unless Kind is HighlightRule.
func (h Highlight) Rule() Rule { return h.rule }

// BuildHighlight assembles a Rule from configuration. Recurrence rules are
// expanded over [today-horizon, today+horizon]; feedDays, if non-nil,
// serves days collected from ICS feeds.
func BuildHighlight(cfg config.HighlightConfig, today time.Time, feedDays *SharedDays) (Highlight, error) {
	loc := today.Location()
	rule := Rule{
		Dates:             make(DaySet),
		HighlightDisabled: cfg.HighlightDisabled,
	}

	var errs []error
	for _, s := range cfg.Dates {
		d, err := dates.ParseDate(s, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("highlight: %w", err))
			continue
		}
		rule.Dates.Add(d)
	}
	for _, wd := range cfg.WeekDays {
		if wd >= 0 && wd <= 6 {
			rule.WeekDays = append(rule.WeekDays, time.Weekday(wd))
		}
	}

	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = 366
	}
	recur, err := ExpandRecurrences(cfg.RRules, dates.AddDays(today, -horizon), dates.AddDays(today, horizon))
	if err != nil {
		errs = append(errs, fmt.Errorf("highlight: %w", err))
	}
	rule.Dates.Merge(recur)

	if feedDays != nil {
		rule.DatesFunc = feedDays.Has
	}

	return FromRule(rule), errors.Join(errs...)
}
