package rules

import (
	"errors"
	"fmt"
	"time"

	"dpcal/internal/config"
	"dpcal/internal/dates"
)

// Disabled resolves whether a day can be picked. It folds min/max bounds,
// explicit days, weekdays, recurrence rules and an optional predicate.
type Disabled struct {
	min, max *time.Time
	days     DaySet
	weekDays map[time.Weekday]bool
	fn       func(time.Time) bool
}

// DisabledOption configures a Disabled resolver.
type DisabledOption func(*Disabled)

func WithMinDate(t time.Time) DisabledOption {
	return func(d *Disabled) { d.min = &t }
}

func WithMaxDate(t time.Time) DisabledOption {
	return func(d *Disabled) { d.max = &t }
}

func WithDisabledDays(days DaySet) DisabledOption {
	return func(d *Disabled) { d.days.Merge(days) }
}

func WithDisabledWeekDays(wds ...time.Weekday) DisabledOption {
	return func(d *Disabled) {
		for _, wd := range wds {
			d.weekDays[wd] = true
		}
	}
}

func WithDisabledFunc(fn func(time.Time) bool) DisabledOption {
	return func(d *Disabled) { d.fn = fn }
}

func NewDisabled(opts ...DisabledOption) *Disabled {
	d := &Disabled{
		days:     make(DaySet),
		weekDays: make(map[time.Weekday]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsDisabled reports whether t cannot be picked.
func (d *Disabled) IsDisabled(t time.Time) bool {
	if d == nil {
		return false
	}
	if d.min != nil && dates.Before(t, *d.min) {
		return true
	}
	if d.max != nil && dates.After(t, *d.max) {
		return true
	}
	if d.days.Has(t) || d.weekDays[t.Weekday()] {
		return true
	}
	return d.fn != nil && d.fn(t)
}

// BuildDisabled assembles a resolver from configuration. Invalid entries
// are skipped and reported together; the returned resolver is always
// usable.
func BuildDisabled(cfg config.DisabledConfig, today time.Time, horizonDays int) (*Disabled, error) {
	loc := today.Location()
	var (
		opts []DisabledOption
		errs []error
	)

	if cfg.MinDate != "" {
		if t, err := dates.ParseDate(cfg.MinDate, loc); err != nil {
			errs = append(errs, fmt.Errorf("disabled min_date: %w", err))
		} else {
			opts = append(opts, WithMinDate(t))
		}
	}
	if cfg.MaxDate != "" {
		if t, err := dates.ParseDate(cfg.MaxDate, loc); err != nil {
			errs = append(errs, fmt.Errorf("disabled max_date: %w", err))
		} else {
			opts = append(opts, WithMaxDate(t))
		}
	}

	days := make(DaySet)
	for _, s := range cfg.Dates {
		t, err := dates.ParseDate(s, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("disabled: %w", err))
			continue
		}
		days.Add(t)
	}

	if horizonDays <= 0 {
		horizonDays = 366
	}
	recur, err := ExpandRecurrences(cfg.RRules, dates.AddDays(today, -horizonDays), dates.AddDays(today, horizonDays))
	if err != nil {
		errs = append(errs, fmt.Errorf("disabled: %w", err))
	}
	days.Merge(recur)
	opts = append(opts, WithDisabledDays(days))

	var wds []time.Weekday
	for _, wd := range cfg.WeekDays {
		if wd >= 0 && wd <= 6 {
			wds = append(wds, time.Weekday(wd))
		}
	}
	opts = append(opts, WithDisabledWeekDays(wds...))

	return NewDisabled(opts...), errors.Join(errs...)
}
