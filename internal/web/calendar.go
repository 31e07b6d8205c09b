package web

import (
	"bytes"
	"html/template"
	"net/http"

	"dpcal/internal/dates"
	appLog "dpcal/internal/log"
	"dpcal/internal/page"
)

// calendarTmpl renders the preview page. The root element carries
// data-ready="true" once the grid is in the DOM; the capture package waits
// for it before taking a screenshot.
var calendarTmpl = template.Must(template.New("calendar").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>dpcal {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
.dp__menu { display: flex; gap: 32px; }
table { border-collapse: collapse; }
th, td { width: 40px; height: 36px; text-align: center; }
.dp__cell_offset { color: #aaa; }
.dp__cell_disabled { color: #ccc; text-decoration: line-through; }
.dp__today { border: 1px solid #1976d2; }
.dp__cell_highlight { background: #fff3c4; }
.dp__cell_highlight_active { background: #ffd54f; }
.dp__range_between, .dp__cell_auto_range { background: #e3f2fd; }
.dp__range_start, .dp__range_end, .dp__active,
.dp__cell_auto_range_start, .dp__cell_auto_range_end { background: #1976d2; color: #fff; }
.dp__date_hover_start, .dp__date_hover_end { outline: 2px dashed #1976d2; }
</style>
</head>
<body>
<div class="dp__menu" data-ready="true">
{{- range .Pages}}
<table class="dp__calendar" data-month="{{.Month}}">
<caption>{{.Title}}</caption>
<thead><tr>{{range $.Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Weeks}}
<tr>{{range .}}{{if .Hidden}}<td></td>{{else}}<td data-date="{{.Date}}" class="{{.Classes}}">{{.Day}}</td>{{end}}{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</div>
</body>
</html>
`))

type calendarView struct {
	Title  string
	Header []string
	Pages  []calendarPage
}

type calendarPage struct {
	Month string
	Title string
	Weeks [][]calendarCell
}

type calendarCell struct {
	Date    string
	Day     int
	Classes string
	Hidden  bool
}

// handleCalendar renders the classified grid as HTML.
//
// GET /calendar?month=2025-01
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	first, err := s.monthParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := s.buildCalendarView(page.Pages(first, s.setup.Options.MultiCalendars, s.setup.WeekStart))

	var buf bytes.Buffer
	if err := calendarTmpl.Execute(&buf, view); err != nil {
		appLog.Error("calendar render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// buildCalendarView classifies every page under one lock.
func (s *Server) buildCalendarView(pages []page.Month) calendarView {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.currentSession()
	o := sess.Options()
	view := calendarView{Header: page.Header(o.WeekStart)}
	if len(pages) > 0 {
		view.Title = pages[0].First.Format("January 2006")
	}

	for _, m := range pages {
		p := calendarPage{
			Month: m.First.Format(dates.MonthLayout),
			Title: m.First.Format("January 2006"),
		}
		for _, week := range m.Weeks() {
			row := make([]calendarCell, 0, len(week))
			for _, d := range week {
				c := sess.DayClassData(d, s.sel)
				row = append(row, calendarCell{
					Date:    d.Value.Format(dates.DateLayout),
					Day:     d.Value.Day(),
					Classes: classesOf(c),
					Hidden:  len(c) == 0,
				})
			}
			p.Weeks = append(p.Weeks, row)
		}
		view.Pages = append(view.Pages, p)
	}
	return view
}
