package classify

import (
	"testing"
	"time"

	"dpcal/internal/model"
	"dpcal/internal/rules"
)

func jan(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func cur(d int) model.Day {
	return model.Day{Value: jan(d), Current: true}
}

func offset(d int) model.Day {
	return model.Day{Value: jan(d), Current: false}
}

func newTestSession(opts Options) *Session {
	opts.Location = time.UTC
	opts.Now = func() time.Time { return time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC) }
	return NewSession(opts)
}

type disabledDays map[int]bool

func (d disabledDays) IsDisabled(t time.Time) bool {
	return t.Month() == time.January && d[t.Day()]
}

func TestPendingRangeHoverBeforeStart(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.Range(jan(5), nil)
	s.SetHoverDate(cur(3))

	hovered := s.DayClassData(cur(3), sel)
	if !hovered.Has(TagDateHoverEnd) {
		t.Fatalf("expected hovered day before the start to preview as end, got %v", hovered.Names())
	}
	if hovered.Has(TagDateHoverStart) {
		t.Fatalf("expected no start preview on hovered day, got %v", hovered.Names())
	}

	fixed := s.DayClassData(cur(5), sel)
	if !fixed.Has(TagRangeStart) {
		t.Fatalf("expected fixed boundary to be marked start, got %v", fixed.Names())
	}

	inside := s.DayClassData(cur(4), sel)
	if !inside.Has(TagRangeBetween) {
		t.Fatalf("expected Jan 4 to be between hover and start, got %v", inside.Names())
	}
	if s.DayClassData(cur(6), sel).Has(TagRangeBetween) {
		t.Fatalf("expected Jan 6 outside the previewed range")
	}
}

func TestPendingRangeHoverAfterStart(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.Range(jan(5), nil)
	s.SetHoverDate(cur(8))

	hovered := s.DayClassData(cur(8), sel)
	if !hovered.Has(TagDateHoverStart) || hovered.Has(TagDateHoverEnd) {
		t.Fatalf("expected start preview only, got %v", hovered.Names())
	}

	fixed := s.DayClassData(cur(5), sel)
	if !fixed.Has(TagRangeStart) {
		t.Fatalf("expected fixed boundary to stay start, got %v", fixed.Names())
	}
	if fixed.Has(TagRangeEnd) {
		t.Fatalf("expected fixed boundary not to be end while hovering after it, got %v", fixed.Names())
	}
	for _, d := range []int{6, 7} {
		if !s.DayClassData(cur(d), sel).Has(TagRangeBetween) {
			t.Fatalf("expected Jan %d between", d)
		}
	}
}

func TestPendingRangeWithoutHover(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.Range(jan(5), nil)

	fixed := s.DayClassData(cur(5), sel)
	if !fixed.Has(TagRangeStart) || !fixed.Has(TagRangeEnd) {
		t.Fatalf("expected lone boundary to be both anchors, got %v", fixed.Names())
	}
	if s.DayClassData(cur(6), sel).Has(TagRangeBetween) {
		t.Fatalf("expected no between cells without hover or end")
	}
}

func TestCompleteRange(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.RangeOf(jan(5), jan(9))
	s.SetHoverDate(cur(20))

	if c := s.DayClassData(cur(5), sel); !c.Has(TagRangeStart) || c.Has(TagRangeEnd) {
		t.Fatalf("expected Jan 5 start only, got %v", c.Names())
	}
	if c := s.DayClassData(cur(9), sel); !c.Has(TagRangeEnd) || c.Has(TagRangeStart) {
		t.Fatalf("expected Jan 9 end only, got %v", c.Names())
	}
	if !s.DayClassData(cur(7), sel).Has(TagRangeBetween) {
		t.Fatalf("expected Jan 7 between")
	}
	if s.DayClassData(cur(12), sel).Has(TagRangeBetween) {
		t.Fatalf("expected hover to be ignored once both ends are set")
	}
	if c := s.DayClassData(cur(20), sel); c.Has(TagDateHoverStart) || c.Has(TagDateHoverEnd) {
		t.Fatalf("expected no hover anchors on a complete range, got %v", c.Names())
	}
}

func TestCompleteRangeReversedOrder(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.RangeOf(jan(9), jan(5))

	if !s.DayClassData(cur(7), sel).Has(TagRangeBetween) {
		t.Fatalf("expected between to tolerate reversed boundaries")
	}
	if !s.DayClassData(cur(9), sel).Has(TagRangeStart) {
		t.Fatalf("expected click order to decide the start anchor")
	}
}

func TestCompleteRangeHidesOffsetAnchors(t *testing.T) {
	s := newTestSession(Options{Range: true, HideOffsetDates: true})
	sel := model.RangeOf(jan(5), jan(9))
	if c := s.DayClassData(offset(5), sel); len(c) != 0 {
		t.Fatalf("expected hidden offset anchor to produce nothing, got %v", c)
	}
}

func TestAutoRangePreview(t *testing.T) {
	s := newTestSession(Options{AutoRange: 3})
	s.SetHoverDate(cur(10))
	sel := model.Empty()

	if !s.DayClassData(cur(10), sel).Has(TagAutoRangeStart) {
		t.Fatalf("expected Jan 10 auto-range start")
	}
	for _, d := range []int{11, 12} {
		if !s.DayClassData(cur(d), sel).Has(TagAutoRangeBetween) {
			t.Fatalf("expected Jan %d auto-range interior", d)
		}
	}
	if !s.DayClassData(cur(13), sel).Has(TagAutoRangeEnd) {
		t.Fatalf("expected Jan 13 auto-range end")
	}
	c := s.DayClassData(cur(14), sel)
	if c.Has(TagAutoRangeStart) || c.Has(TagAutoRangeBetween) || c.Has(TagAutoRangeEnd) {
		t.Fatalf("expected Jan 14 outside the preview, got %v", c.Names())
	}

	s.ClearHoverDate()
	for d := 9; d <= 14; d++ {
		c := s.DayClassData(cur(d), sel)
		if c.Has(TagAutoRangeStart) || c.Has(TagAutoRangeBetween) || c.Has(TagAutoRangeEnd) {
			t.Fatalf("expected no preview after hover clears, Jan %d got %v", d, c.Names())
		}
	}
}

func TestAutoRangeWeekPicker(t *testing.T) {
	s := newTestSession(Options{AutoRange: 7, WeekPicker: true, WeekStart: time.Monday})
	// Jan 15 2025 is a Wednesday; its Monday week is 13..19.
	s.SetHoverDate(cur(15))
	sel := model.Empty()

	if !s.DayClassData(cur(13), sel).Has(TagAutoRangeStart) {
		t.Fatalf("expected week start Jan 13 to anchor the preview")
	}
	if !s.DayClassData(cur(16), sel).Has(TagAutoRangeBetween) {
		t.Fatalf("expected Jan 16 inside the hovered week")
	}
	if !s.DayClassData(cur(19), sel).Has(TagAutoRangeEnd) {
		t.Fatalf("expected week end Jan 19 to close the preview")
	}
	if s.DayClassData(cur(15), sel).Has(TagDateHover) {
		t.Fatalf("expected week picker cells not to take plain hover styling")
	}
}

func TestToday(t *testing.T) {
	s := newTestSession(Options{Range: true})

	if !s.DayClassData(cur(15), model.Empty()).Has(TagToday) {
		t.Fatalf("expected current Jan 15 to be today")
	}
	if s.DayClassData(offset(15), model.Empty()).Has(TagToday) {
		t.Fatalf("expected offset Jan 15 not to be today")
	}

	quiet := newTestSession(Options{Range: true, NoToday: true})
	if quiet.DayClassData(cur(15), model.Empty()).Has(TagToday) {
		t.Fatalf("expected no-today to suppress the marker")
	}
}

func TestPastFuture(t *testing.T) {
	s := newTestSession(Options{Range: true})
	past := s.DayClassData(cur(14), model.Empty())
	future := s.DayClassData(cur(16), model.Empty())
	today := s.DayClassData(cur(15), model.Empty())

	if !past.Has(TagPast) || past.Has(TagFuture) {
		t.Fatalf("expected Jan 14 past, got %v", past.Names())
	}
	if !future.Has(TagFuture) || future.Has(TagPast) {
		t.Fatalf("expected Jan 16 future, got %v", future.Names())
	}
	if today.Has(TagPast) || today.Has(TagFuture) {
		t.Fatalf("expected today neither past nor future, got %v", today.Names())
	}
}

func TestTodayUsesConfiguredZone(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	s := NewSession(Options{
		Location: kst,
		Now:      func() time.Time { return time.Date(2025, time.January, 14, 20, 0, 0, 0, time.UTC) },
	})
	if got := s.Today(); got.Day() != 15 || got.Location() != kst {
		t.Fatalf("expected Jan 15 in KST, got %s", got)
	}
}

func TestWeekendHighlight(t *testing.T) {
	weekend := rules.FromRule(rules.Rule{WeekDays: []time.Weekday{time.Sunday, time.Saturday}})
	// Jan 18 2025 is a Saturday.
	sat := cur(18)

	s := newTestSession(Options{Range: true, Highlight: weekend})
	if !s.DayClassData(sat, model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected saturday to be highlighted")
	}
	if s.DayClassData(cur(17), model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected friday not to be highlighted")
	}

	blocked := newTestSession(Options{Range: true, Highlight: weekend, Resolver: disabledDays{18: true}})
	c := blocked.DayClassData(sat, model.Empty())
	if c.Has(TagHighlight) || c.Has(TagHighlightActive) {
		t.Fatalf("expected disabled saturday not to be highlighted, got %v", c.Names())
	}
	if !c.Has(TagDisabled) || c.Has(TagPointer) {
		t.Fatalf("expected disabled saturday without pointer, got %v", c.Names())
	}

	optIn := rules.FromRule(rules.Rule{WeekDays: []time.Weekday{time.Saturday}, HighlightDisabled: true})
	allowed := newTestSession(Options{Range: true, Highlight: optIn, Resolver: disabledDays{18: true}})
	if !allowed.DayClassData(sat, model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected highlight_disabled to keep the highlight")
	}
}

func TestPredicateHighlight(t *testing.T) {
	var sawDisabled bool
	pred := rules.Predicate(func(d time.Time, disabled bool) bool {
		if disabled {
			sawDisabled = true
			return d.Day() == 20
		}
		return d.Day() == 1 || d.Day() == 20
	})
	s := newTestSession(Options{Range: true, Highlight: pred, Resolver: disabledDays{20: true, 21: true}})

	if !s.DayClassData(cur(1), model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected predicate to highlight Jan 1")
	}
	if !s.DayClassData(cur(20), model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected predicate to opt disabled Jan 20 in")
	}
	if s.DayClassData(cur(21), model.Empty()).Has(TagHighlight) {
		t.Fatalf("expected disabled Jan 21 to stay plain")
	}
	if !sawDisabled {
		t.Fatalf("expected predicate to learn about disabled days")
	}
}

func TestHighlightYieldsToAnchors(t *testing.T) {
	all := rules.Predicate(func(time.Time, bool) bool { return true })
	s := newTestSession(Options{Range: true, Highlight: all})
	sel := model.RangeOf(jan(5), jan(9))

	for _, d := range []int{5, 9} {
		c := s.DayClassData(cur(d), sel)
		if c.Has(TagHighlight) || c.Has(TagHighlightActive) {
			t.Fatalf("expected anchor Jan %d not to be highlighted, got %v", d, c.Names())
		}
	}
	if !s.DayClassData(cur(7), sel).Has(TagHighlight) {
		t.Fatalf("expected interior day to keep its highlight")
	}
}

func TestHighlightActiveInSingleMode(t *testing.T) {
	all := rules.Predicate(func(time.Time, bool) bool { return true })
	s := newTestSession(Options{Highlight: all})

	c := s.DayClassData(cur(7), model.Single(jan(7)))
	if !c.Has(TagActive) || !c.Has(TagHighlightActive) || c.Has(TagHighlight) {
		t.Fatalf("expected active highlight on the selected day, got %v", c.Names())
	}
}

func TestSingleMode(t *testing.T) {
	s := newTestSession(Options{})
	sel := model.Single(jan(7))

	if !s.DayClassData(cur(7), sel).Has(TagActive) {
		t.Fatalf("expected selected day to be active")
	}
	other := s.DayClassData(cur(8), sel)
	if other.Has(TagActive) || !other.Has(TagDateHover) {
		t.Fatalf("expected other day hoverable and inactive, got %v", other.Names())
	}
	if _, ok := other[TagRangeStart]; ok {
		t.Fatalf("expected single mode not to emit range tags")
	}
	if s.DayClassData(cur(15), model.Empty()).Has(TagActive) {
		t.Fatalf("expected nothing active without a selection")
	}
}

func TestPlainRangeNeverActive(t *testing.T) {
	s := newTestSession(Options{Range: true})
	c := s.DayClassData(cur(5), model.RangeOf(jan(5), jan(9)))
	if c.Has(TagActive) {
		t.Fatalf("expected plain range mode to leave active marking to anchors")
	}
	if c.Has(TagDateHover) {
		t.Fatalf("expected anchors not to take hover styling")
	}
}

func TestModelAuto(t *testing.T) {
	s := newTestSession(Options{ModelAuto: true})

	if !s.DayClassData(cur(15), model.Empty()).Has(TagActive) {
		t.Fatalf("expected today active before any pick in model-auto mode")
	}

	single := model.Single(jan(5))
	if !s.DayClassData(cur(5), single).Has(TagActive) {
		t.Fatalf("expected first pick active")
	}

	pending := model.Range(jan(5), nil)
	s.SetHoverDate(cur(9))
	if s.DayClassData(cur(7), pending).Has(TagRangeBetween) {
		t.Fatalf("expected between gated until the model switches to range")
	}

	done := model.RangeOf(jan(5), jan(9))
	if !s.DayClassData(cur(7), done).Has(TagRangeBetween) {
		t.Fatalf("expected between once both ends are set")
	}
	if s.DayClassData(cur(5), done).Has(TagRangeBetween) {
		t.Fatalf("expected active first boundary not to be between")
	}
}

func TestModelAutoCustomSignal(t *testing.T) {
	s := newTestSession(Options{
		ModelAuto:       true,
		ModelAutoSignal: func(sel model.Selection) bool { return sel.Kind() == model.SelectionRange },
	})
	s.SetHoverDate(cur(9))
	if !s.DayClassData(cur(7), model.Range(jan(5), nil)).Has(TagRangeBetween) {
		t.Fatalf("expected custom signal to open the gate for a pending range")
	}
}

func TestMultiCalendarBetweenOnlyOnActivePage(t *testing.T) {
	s := newTestSession(Options{Range: true, MultiCalendars: 2})
	sel := model.RangeOf(jan(5), jan(9))
	if s.DayClassData(offset(7), sel).Has(TagRangeBetween) {
		t.Fatalf("expected offset cell of another page not to be between")
	}
	if !s.DayClassData(cur(7), sel).Has(TagRangeBetween) {
		t.Fatalf("expected current cell to be between")
	}
}

func TestWeekPickerMultiCalendarOffsetAnchors(t *testing.T) {
	s := newTestSession(Options{WeekPicker: true, MultiCalendars: 2})
	sel := model.RangeOf(jan(13), jan(19))
	if c := s.DayClassData(offset(13), sel); c.Has(TagRangeStart) {
		t.Fatalf("expected offset week row not to anchor, got %v", c.Names())
	}
	if !s.DayClassData(cur(13), sel).Has(TagRangeStart) {
		t.Fatalf("expected current week row to anchor")
	}
}

func TestWeekPickerBetweenSuppressesHighlight(t *testing.T) {
	all := rules.Predicate(func(time.Time, bool) bool { return true })
	s := newTestSession(Options{WeekPicker: true, Highlight: all})
	c := s.DayClassData(cur(15), model.RangeOf(jan(13), jan(19)))
	if !c.Has(TagRangeBetween) || c.Has(TagHighlight) {
		t.Fatalf("expected week interior without highlight, got %v", c.Names())
	}
}

func TestHoverIgnoresHiddenOffset(t *testing.T) {
	s := newTestSession(Options{Range: true, HideOffsetDates: true})
	s.SetHoverDate(offset(31))
	if _, ok := s.HoverDate(); ok {
		t.Fatalf("expected hidden offset hover to be ignored")
	}
	s.SetHoverDate(cur(3))
	s.SetHoverDate(cur(4))
	if h, ok := s.HoverDate(); !ok || !h.Equal(jan(4)) {
		t.Fatalf("expected last hover to win, got %s (ok=%v)", h, ok)
	}
	s.ClearHoverDate()
	if _, ok := s.HoverDate(); ok {
		t.Fatalf("expected hover cleared")
	}
}

func TestHiddenOffsetYieldsEmptyMapping(t *testing.T) {
	s := newTestSession(Options{
		AutoRange:       3,
		HideOffsetDates: true,
		CellClassName:   "cell",
		DayClass:        func(time.Time) string { return "custom" },
	})
	s.SetHoverDate(cur(30))
	sel := model.RangeOf(jan(29), jan(31))
	for _, d := range []int{29, 30, 31} {
		if c := s.DayClassData(offset(d), sel); len(c) != 0 {
			t.Fatalf("expected {} for hidden offset Jan %d, got %v", d, c)
		}
	}
}

func TestPointerAndGlobalDisable(t *testing.T) {
	s := newTestSession(Options{Range: true})
	if !s.DayClassData(cur(10), model.Empty()).Has(TagPointer) {
		t.Fatalf("expected pointer on enabled cell")
	}
	if !s.DayClassData(offset(31), model.Empty()).Has(TagOffset) {
		t.Fatalf("expected offset flag on offset cell")
	}

	off := newTestSession(Options{Range: true, Disabled: true})
	if off.DayClassData(cur(10), model.Empty()).Has(TagPointer) {
		t.Fatalf("expected globally disabled picker to drop pointer")
	}
}

func TestCustomTags(t *testing.T) {
	s := newTestSession(Options{
		Range:         true,
		CellClassName: "my-cell",
		DayClass: func(d time.Time) string {
			if d.Day() == 1 {
				return "new-year"
			}
			return ""
		},
	})
	c := s.DayClassData(cur(1), model.Empty())
	if !c.Has("my-cell") || !c.Has("new-year") {
		t.Fatalf("expected custom tags, got %v", c.Names())
	}
	c = s.DayClassData(cur(2), model.Empty())
	if _, ok := c[""]; ok {
		t.Fatalf("expected empty day class to be skipped")
	}
}

func TestNonRangeConfigDegrades(t *testing.T) {
	s := newTestSession(Options{})
	s.SetHoverDate(cur(8))
	sel := model.Range(jan(5), nil)
	for d := 1; d <= 10; d++ {
		c := s.DayClassData(cur(d), sel)
		for _, tag := range []string{TagRangeStart, TagRangeEnd, TagRangeBetween, TagDateHoverStart, TagDateHoverEnd} {
			if c.Has(tag) {
				t.Fatalf("expected %s off without range mode on Jan %d", tag, d)
			}
		}
	}
}

func TestClassificationIsIdempotent(t *testing.T) {
	s := newTestSession(Options{Range: true, Highlight: rules.FromRule(rules.Rule{WeekDays: []time.Weekday{time.Saturday}})})
	s.SetHoverDate(cur(12))
	sel := model.Range(jan(8), nil)

	for d := 1; d <= 31; d++ {
		a := s.DayClassData(cur(d), sel)
		b := s.DayClassData(cur(d), sel)
		if len(a) != len(b) {
			t.Fatalf("expected identical results for Jan %d", d)
		}
		for k, v := range a {
			if b[k] != v {
				t.Fatalf("expected identical %s for Jan %d", k, d)
			}
		}
	}
}

func TestModeBranchesAreExclusive(t *testing.T) {
	branchOf := func(c ClassData) []string {
		var out []string
		if _, ok := c[TagAutoRangeStart]; ok {
			out = append(out, "auto")
		}
		if _, ok := c[TagDateHoverStart]; ok {
			out = append(out, "range")
		}
		if _, ok := c[TagActive]; ok {
			out = append(out, "single")
		}
		return out
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"auto wins over model-auto", Options{AutoRange: 2, ModelAuto: true}, []string{"auto"}},
		{"model-auto unions single and range", Options{ModelAuto: true}, []string{"range", "single"}},
		{"range", Options{Range: true}, []string{"range"}},
		{"week picker", Options{WeekPicker: true}, []string{"range"}},
		{"single", Options{}, []string{"single"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.opts)
			got := branchOf(s.DayClassData(cur(10), model.Empty()))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestHighlightNeverCoincidesWithAnchors(t *testing.T) {
	all := rules.Predicate(func(time.Time, bool) bool { return true })
	configs := []Options{
		{Range: true, Highlight: all},
		{ModelAuto: true, Highlight: all},
		{AutoRange: 3, Highlight: all},
		{WeekPicker: true, Highlight: all},
		{AutoRange: 7, WeekPicker: true, Highlight: all},
		{Highlight: all},
	}
	selections := []model.Selection{
		model.Empty(),
		model.Single(jan(10)),
		model.Range(jan(10), nil),
		model.RangeOf(jan(10), jan(14)),
		model.RangeOf(jan(14), jan(10)),
	}
	anchors := []string{TagRangeStart, TagRangeEnd, TagAutoRangeStart, TagAutoRangeEnd}

	for ci, opts := range configs {
		for si, sel := range selections {
			for _, hover := range []int{0, 8, 12} {
				s := newTestSession(opts)
				if hover > 0 {
					s.SetHoverDate(cur(hover))
				}
				for d := 1; d <= 31; d++ {
					c := s.DayClassData(cur(d), sel)
					lit := c.Has(TagHighlight) || c.Has(TagHighlightActive)
					if c.Has(TagHighlight) && c.Has(TagHighlightActive) {
						t.Fatalf("config %d sel %d hover %d: both highlight flags on Jan %d", ci, si, hover, d)
					}
					for _, a := range anchors {
						if lit && c.Has(a) {
							t.Fatalf("config %d sel %d hover %d: highlight and %s both on Jan %d", ci, si, hover, a, d)
						}
					}
				}
			}
		}
	}
}

func TestAutoRangeEndNotHighlighted(t *testing.T) {
	all := rules.Predicate(func(time.Time, bool) bool { return true })
	s := newTestSession(Options{AutoRange: 3, Highlight: all})
	s.SetHoverDate(cur(10))
	sel := model.Empty()

	end := s.DayClassData(cur(13), sel)
	if !end.Has(TagAutoRangeEnd) || end.Has(TagHighlight) {
		t.Fatalf("expected Jan 13 to be an unhighlighted auto-range end, got %v", end.Names())
	}
	if !s.DayClassData(cur(11), sel).Has(TagHighlight) {
		t.Fatalf("expected auto-range interior to keep its highlight")
	}
	if !s.DayClassData(cur(14), sel).Has(TagHighlight) {
		t.Fatalf("expected day past the preview to keep its highlight")
	}
}

func TestPendingStartAnchorIgnoresHoverSide(t *testing.T) {
	s := newTestSession(Options{Range: true})
	sel := model.Range(jan(10), nil)
	for _, h := range []int{1, 9, 10, 11, 20} {
		s.SetHoverDate(cur(h))
		if !s.DayClassData(cur(10), sel).Has(TagRangeStart) {
			t.Fatalf("expected fixed Jan 10 to stay start with hover on Jan %d", h)
		}
	}
}
