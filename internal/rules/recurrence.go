package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ExpandRecurrences expands RFC 5545 recurrence rules into the days they
// hit within [from, to]. A rule may be a bare RRULE value, in which case
// it starts at from, or a full "DTSTART:...\nRRULE:..." block.
// Rules that fail to parse are skipped and reported together; the days of
// the remaining rules are always returned.
func ExpandRecurrences(specs []string, from, to time.Time) (DaySet, error) {
	out := make(DaySet)
	var errs []error
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		occ, err := expandOne(spec, from, to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, t := range occ {
			out.Add(t.In(from.Location()))
		}
	}
	return out, errors.Join(errs...)
}

func expandOne(spec string, from, to time.Time) ([]time.Time, error) {
	if strings.Contains(strings.ToUpper(spec), "DTSTART") {
		set, err := rrule.StrToRRuleSet(spec)
		if err != nil {
			return nil, fmt.Errorf("rules: parse recurrence %q: %w", spec, err)
		}
		return set.Between(from, to, true), nil
	}

	r, err := rrule.StrToRRule(strings.TrimPrefix(spec, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("rules: parse recurrence %q: %w", spec, err)
	}
	r.DTStart(from)
	return r.Between(from, to, true), nil
}
