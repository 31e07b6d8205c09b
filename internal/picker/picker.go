// Package picker turns a loaded configuration into a ready classifier
// setup shared by the terminal, HTTP and capture surfaces.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dpcal/internal/classify"
	"dpcal/internal/config"
	"dpcal/internal/dates"
	"dpcal/internal/ics"
	appLog "dpcal/internal/log"
	"dpcal/internal/model"
	"dpcal/internal/rules"
)

// Setup is the resolved picker configuration.
type Setup struct {
	Options   classify.Options
	Location  *time.Location
	WeekStart time.Weekday
	Today     time.Time

	// FeedDays backs the highlight rule's dynamic dates; RefreshFeeds
	// swaps its contents.
	FeedDays *rules.SharedDays

	feeds   []ics.Feed
	horizon int
}

// FromConfig resolves cfg against now. Invalid entries (bad dates, RRULEs,
// an unknown timezone) are reported in the joined error while the returned
// Setup stays usable.
func FromConfig(cfg *config.Config, now func() time.Time) (*Setup, error) {
	if cfg == nil {
		return nil, errors.New("picker: nil config")
	}
	if now == nil {
		now = time.Now
	}

	var errs []error
	loc, err := dates.ResolveLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("picker: %w", err))
	}
	today := dates.Today(now(), loc)
	weekStart := dates.ParseWeekStart(cfg.WeekStart)

	feedDays := &rules.SharedDays{}
	highlight, err := rules.BuildHighlight(cfg.Highlight, today, feedDays)
	if err != nil {
		errs = append(errs, err)
	}
	disabled, err := rules.BuildDisabled(cfg.Disabled, today, cfg.Highlight.HorizonDays)
	if err != nil {
		errs = append(errs, err)
	}

	p := cfg.Picker
	s := &Setup{
		Options: classify.Options{
			Range:           p.Range,
			AutoRange:       p.AutoRange,
			WeekPicker:      p.WeekPicker,
			WeekStart:       weekStart,
			MultiCalendars:  p.MultiCalendars,
			HideOffsetDates: p.HideOffsetDates,
			ModelAuto:       p.ModelAuto,
			NoToday:         p.NoToday,
			Disabled:        p.Disabled,
			CellClassName:   p.CellClassName,
			Highlight:       highlight,
			Resolver:        disabled,
			Location:        loc,
			Now:             now,
		},
		Location:  loc,
		WeekStart: weekStart,
		Today:     today,
		FeedDays:  feedDays,
		feeds:     ics.FeedsFromConfig(cfg.Highlight.Feeds),
		horizon:   cfg.Highlight.HorizonDays,
	}
	return s, errors.Join(errs...)
}

// NewSession starts a classifier session for this setup.
func (s *Setup) NewSession() *classify.Session {
	return classify.NewSession(s.Options)
}

// HasFeeds reports whether any ICS feed is configured.
func (s *Setup) HasFeeds() bool { return len(s.feeds) > 0 }

// RefreshFeeds re-collects feed days around today and publishes them. On a
// partial failure the days of the working feeds are still published.
func (s *Setup) RefreshFeeds(ctx context.Context, f *ics.Fetcher) error {
	if len(s.feeds) == 0 {
		return nil
	}
	horizon := s.horizon
	if horizon <= 0 {
		horizon = 366
	}
	today := dates.Today(s.Options.Now(), s.Location)
	days, err := ics.Collect(ctx, f, s.feeds, dates.AddDays(today, -horizon), dates.AddDays(today, horizon))
	if len(days) > 0 || err == nil {
		s.FeedDays.Replace(days)
	}
	if err != nil {
		return fmt.Errorf("picker: refresh feeds: %w", err)
	}
	return nil
}

// ParseSelection builds a selection from zero, one or two YYYY-MM-DD
// values. One value is a single date, or a pending range when rangeMode
// is set; two values always form a completed range in the given order.
func ParseSelection(values []string, rangeMode bool, loc *time.Location) (model.Selection, error) {
	var parsed []time.Time
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		t, err := dates.ParseDate(v, loc)
		if err != nil {
			return model.Empty(), fmt.Errorf("selection: %w", err)
		}
		parsed = append(parsed, t)
	}

	switch len(parsed) {
	case 0:
		return model.Empty(), nil
	case 1:
		if rangeMode {
			return model.Range(parsed[0], nil), nil
		}
		return model.Single(parsed[0]), nil
	case 2:
		return model.RangeOf(parsed[0], parsed[1]), nil
	default:
		return model.Empty(), fmt.Errorf("selection: expected at most 2 dates, got %d", len(parsed))
	}
}

// RangeMode reports whether the options collect ranges.
func RangeMode(o classify.Options) bool {
	return o.Range || o.WeekPicker || o.ModelAuto || o.AutoRange > 0
}

// LogSummary writes the effective picker settings at info level.
func (s *Setup) LogSummary() {
	o := s.Options
	appLog.Info("picker setup",
		"timezone", s.Location.String(),
		"today", s.Today.Format(dates.DateLayout),
		"week_start", s.WeekStart.String(),
		"range", o.Range,
		"auto_range", o.AutoRange,
		"week_picker", o.WeekPicker,
		"model_auto", o.ModelAuto,
		"multi_calendars", o.MultiCalendars,
		"highlight", o.Highlight.Kind().String(),
		"feeds", len(s.feeds),
	)
}
