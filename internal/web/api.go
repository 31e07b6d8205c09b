package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"dpcal/internal/classify"
	"dpcal/internal/dates"
	appLog "dpcal/internal/log"
	"dpcal/internal/model"
	"dpcal/internal/page"
	"dpcal/internal/picker"
)

// maxBodyBytes bounds request bodies of the mutating endpoints.
const maxBodyBytes = 4 << 10

// daysResponse is the JSON response shape for /api/days.
type daysResponse struct {
	Today     string       `json:"today"`
	Timezone  string       `json:"timezone"`
	WeekStart string       `json:"week_start"`
	Hover     string       `json:"hover,omitempty"`
	Selection selectionDTO `json:"selection"`
	Pages     []pageDTO    `json:"pages"`
}

type selectionDTO struct {
	Kind  string `json:"kind"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type pageDTO struct {
	Month string   `json:"month"`
	Days  []dayDTO `json:"days"`
}

// dayDTO is a JSON-friendly view of one classified cell.
type dayDTO struct {
	Date    string   `json:"date"`
	Current bool     `json:"current"`
	Classes []string `json:"classes"`
}

type hoverRequest struct {
	Date string `json:"date"`
	// Offset marks a day borrowed from an adjacent month.
	Offset bool `json:"offset"`
}

type selectionRequest struct {
	Dates []string `json:"dates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDays returns the classified grid.
//
// GET /api/days?month=2025-01
//   - month: first page to show (default: the current month)
//
// MultiCalendars > 0 returns that many consecutive pages.
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	first, err := s.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(first))
}

func (s *Server) monthParam(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		s.mu.Lock()
		today := s.currentSession().Today()
		s.mu.Unlock()
		return today, nil
	}
	return dates.ParseMonth(raw, s.setup.Location)
}

// snapshot classifies every page under one lock so the response reflects a
// single hover/selection state.
func (s *Server) snapshot(first time.Time) daysResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.currentSession()
	o := sess.Options()

	resp := daysResponse{
		Today:     sess.Today().Format(dates.DateLayout),
		Timezone:  s.setup.Location.String(),
		WeekStart: strings.ToLower(o.WeekStart.String()),
		Selection: selectionView(s.sel),
	}
	if h, ok := sess.HoverDate(); ok {
		resp.Hover = h.Format(dates.DateLayout)
	}

	for _, m := range page.Pages(first, o.MultiCalendars, o.WeekStart) {
		p := pageDTO{Month: m.First.Format(dates.MonthLayout), Days: make([]dayDTO, 0, len(m.Days))}
		for _, d := range m.Days {
			p.Days = append(p.Days, dayDTO{
				Date:    d.Value.Format(dates.DateLayout),
				Current: d.Current,
				Classes: sess.DayClassData(d, s.sel).Names(),
			})
		}
		resp.Pages = append(resp.Pages, p)
	}
	return resp
}

func selectionView(sel model.Selection) selectionDTO {
	out := selectionDTO{Kind: sel.Kind().String()}
	if first, ok := sel.First(); ok {
		out.Start = first.Format(dates.DateLayout)
	}
	if end, ok := sel.End(); ok {
		out.End = end.Format(dates.DateLayout)
	}
	return out
}

// handleSetHover moves the hover. PUT /api/hover {"date":"2025-01-03"}
func (s *Server) handleSetHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := dates.ParseDate(req.Date, s.setup.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.currentSession().SetHoverDate(model.Day{Value: d, Current: !req.Offset})
	s.mu.Unlock()

	appLog.Debug("hover set", "date", req.Date, "offset", req.Offset)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHover(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.currentSession().ClearHoverDate()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleSetSelection replaces the selection.
// PUT /api/selection {"dates":["2025-01-05","2025-01-09"]}
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.setup.Options.Disabled {
		writeError(w, http.StatusConflict, "picker is disabled")
		return
	}

	sel, err := picker.ParseSelection(req.Dates, picker.RangeMode(s.setup.Options), s.setup.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.sel = sel
	s.mu.Unlock()

	appLog.Info("selection set", "kind", sel.Kind().String(), "dates", strings.Join(req.Dates, ","))
	writeJSON(w, http.StatusOK, selectionView(sel))
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.sel = model.Empty()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// classesOf is the HTML view of a cell's tags.
func classesOf(c classify.ClassData) string {
	return strings.Join(c.Names(), " ")
}
