package rules

import (
	"sync"
	"time"

	"dpcal/internal/dates"
)

// DaySet is a set of calendar days keyed by their YYYY-MM-DD form.
type DaySet map[string]struct{}

func dayKey(t time.Time) string {
	return t.Format(dates.DateLayout)
}

func NewDaySet(days ...time.Time) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s DaySet) Add(t time.Time) {
	s[dayKey(t)] = struct{}{}
}

func (s DaySet) Has(t time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[dayKey(t)]
	return ok
}

// Merge adds every day of other into s.
func (s DaySet) Merge(other DaySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// SharedDays is a DaySet that can be swapped while readers consult it.
// The feed refresher replaces the whole set; classifiers only call Has.
type SharedDays struct {
	mu   sync.RWMutex
	days DaySet
}

func (s *SharedDays) Has(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.days.Has(t)
}

func (s *SharedDays) Replace(days DaySet) {
	s.mu.Lock()
	s.days = days
	s.mu.Unlock()
}

func (s *SharedDays) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days)
}
