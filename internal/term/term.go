// Package term renders a classified month for the terminal.
package term

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dpcal/internal/classify"
	"dpcal/internal/model"
	"dpcal/internal/page"
)

// ClassifyFunc returns the tags of one cell.
type ClassifyFunc func(model.Day) classify.ClassData

// Options controls the styling of the rendered month.
type Options struct {
	TitleStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	CellStyle   lipgloss.Style
	// TagStyles are layered onto CellStyle in Priority order; the first tag
	// that sets a property wins it.
	TagStyles map[string]lipgloss.Style
	Priority  []string
	WeekStart time.Weekday
	ShowTitle bool
}

// DefaultOptions returns the built-in palette bound to r. A nil r uses the
// default renderer.
func DefaultOptions(r *lipgloss.Renderer) Options {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Options{
		TitleStyle:  r.NewStyle().Bold(true),
		HeaderStyle: r.NewStyle().Faint(true),
		CellStyle:   r.NewStyle(),
		TagStyles: map[string]lipgloss.Style{
			classify.TagRangeStart:       r.NewStyle().Reverse(true).Bold(true),
			classify.TagRangeEnd:         r.NewStyle().Reverse(true).Bold(true),
			classify.TagActive:           r.NewStyle().Reverse(true).Bold(true),
			classify.TagAutoRangeStart:   r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
			classify.TagAutoRangeEnd:     r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
			classify.TagDateHoverStart:   r.NewStyle().Underline(true),
			classify.TagDateHoverEnd:     r.NewStyle().Underline(true),
			classify.TagRangeBetween:     r.NewStyle().Background(lipgloss.Color("237")),
			classify.TagAutoRangeBetween: r.NewStyle().Background(lipgloss.Color("23")),
			classify.TagHighlightActive:  r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			classify.TagHighlight:        r.NewStyle().Foreground(lipgloss.Color("3")),
			classify.TagToday:            r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			classify.TagDisabled:         r.NewStyle().Strikethrough(true).Faint(true),
			classify.TagOffset:           r.NewStyle().Faint(true),
		},
		Priority: []string{
			classify.TagRangeStart,
			classify.TagRangeEnd,
			classify.TagActive,
			classify.TagAutoRangeStart,
			classify.TagAutoRangeEnd,
			classify.TagDateHoverStart,
			classify.TagDateHoverEnd,
			classify.TagRangeBetween,
			classify.TagAutoRangeBetween,
			classify.TagHighlightActive,
			classify.TagHighlight,
			classify.TagToday,
			classify.TagDisabled,
			classify.TagOffset,
		},
		ShowTitle: true,
	}
}

// Render draws one month page. Cells are four columns wide: an opening
// bracket marks a start, a closing bracket an end, and "*" a highlight.
// Cells classified to nothing (hidden offset days) render blank.
func Render(m page.Month, classes ClassifyFunc, opts Options) string {
	var lines []string
	if opts.ShowTitle {
		lines = append(lines, opts.TitleStyle.Render(m.First.Format("January 2006")))
	}

	var header strings.Builder
	for _, label := range page.Header(opts.WeekStart) {
		header.WriteString(" " + label + " ")
	}
	lines = append(lines, opts.HeaderStyle.Render(header.String()))

	for _, week := range m.Weeks() {
		var row strings.Builder
		for _, day := range week {
			row.WriteString(renderCell(day, classes(day), opts))
		}
		lines = append(lines, row.String())
	}
	return strings.Join(lines, "\n")
}

func renderCell(day model.Day, tags classify.ClassData, opts Options) string {
	if len(tags) == 0 {
		return "    "
	}
	style := opts.CellStyle
	for _, tag := range opts.Priority {
		if s, ok := opts.TagStyles[tag]; ok && tags.Has(tag) {
			style = style.Inherit(s)
		}
	}
	return style.Render(cellText(day, tags))
}

func cellText(day model.Day, tags classify.ClassData) string {
	lead, trail := " ", " "
	if tags.Has(classify.TagRangeStart) || tags.Has(classify.TagAutoRangeStart) || tags.Has(classify.TagDateHoverStart) {
		lead = "["
	}
	switch {
	case tags.Has(classify.TagRangeEnd) || tags.Has(classify.TagAutoRangeEnd) || tags.Has(classify.TagDateHoverEnd):
		trail = "]"
	case tags.Has(classify.TagHighlight) || tags.Has(classify.TagHighlightActive):
		trail = "*"
	}
	return fmt.Sprintf("%s%2d%s", lead, day.Value.Day(), trail)
}
