package ics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dpcal/internal/config"
	appLog "dpcal/internal/log"
	"dpcal/internal/rules"
)

// FeedsFromConfig converts configured feeds, skipping ones without a URL.
// A missing ID falls back to the name, then the URL.
func FeedsFromConfig(in []config.FeedConfig) []Feed {
	out := make([]Feed, 0, len(in))
	for _, c := range in {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		out = append(out, Feed{ID: id, URL: c.URL})
	}
	return out
}

// Collect fetches and parses feeds and returns the days their events cover
// within [from, to]. Partial failures still yield the days of the feeds
// that worked, alongside a joined error.
func Collect(ctx context.Context, f *Fetcher, feeds []Feed, from, to time.Time) (rules.DaySet, error) {
	days := make(rules.DaySet)
	if len(feeds) == 0 {
		return days, nil
	}

	results, fetchErr := f.FetchAll(ctx, feeds)
	errs := []error{fetchErr}

	for _, res := range results {
		events, err := Parse(res.Feed, res.Body)
		if err != nil {
			appLog.Error("feed parse failed", err, "id", res.Feed.ID)
			errs = append(errs, fmt.Errorf("feed %s: %w", res.Feed.ID, err))
			continue
		}
		days.Merge(EventDays(events, from, to))
	}

	appLog.Info("feeds collected", "feeds", len(feeds), "ok", len(results), "days", len(days))
	return days, errors.Join(errs...)
}
