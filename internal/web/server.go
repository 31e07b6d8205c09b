package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dpcal/internal/classify"
	"dpcal/internal/config"
	"dpcal/internal/dates"
	"dpcal/internal/ics"
	appLog "dpcal/internal/log"
	"dpcal/internal/model"
	"dpcal/internal/picker"
)

// Server exposes one picker instance over HTTP: the classified month grid
// as JSON and HTML, plus endpoints that move the hover and the selection.
type Server struct {
	cfg     *config.Config
	setup   *picker.Setup
	fetcher *ics.Fetcher
	mux     *http.ServeMux

	// mu serializes every touch of session and sel; the classifier itself
	// is single-threaded.
	mu      sync.Mutex
	session *classify.Session
	sel     model.Selection
}

// NewServer constructs a Server. fetcher may be nil when no feeds are
// configured.
func NewServer(cfg *config.Config, setup *picker.Setup, fetcher *ics.Fetcher) *Server {
	s := &Server{
		cfg:     cfg,
		setup:   setup,
		fetcher: fetcher,
		mux:     http.NewServeMux(),
		session: setup.NewSession(),
		sel:     model.Empty(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials leave auth off.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dpcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/days", s.handleDays)
	s.mux.HandleFunc("PUT /api/hover", s.handleSetHover)
	s.mux.HandleFunc("DELETE /api/hover", s.handleClearHover)
	s.mux.HandleFunc("PUT /api/selection", s.handleSetSelection)
	s.mux.HandleFunc("DELETE /api/selection", s.handleClearSelection)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
}

// currentSession returns the session, replacing it when the date rolled
// over since it captured "today". The hover carries over. Callers hold mu.
func (s *Server) currentSession() *classify.Session {
	o := s.session.Options()
	if dates.Equal(dates.Today(o.Now(), o.Location), s.session.Today()) {
		return s.session
	}
	next := s.setup.NewSession()
	if h, ok := s.session.HoverDate(); ok {
		next.SetHoverDate(model.Day{Value: h, Current: true})
	}
	appLog.Info("day rolled over; new classifier session", "today", next.Today().Format(dates.DateLayout))
	s.session = next
	return next
}

// StartServer serves cfg.Listen until ctx is canceled, refreshing highlight
// feeds on the configured cron schedule meanwhile.
func StartServer(ctx context.Context, cfg *config.Config, setup *picker.Setup, fetcher *ics.Fetcher) error {
	s := NewServer(cfg, setup, fetcher)

	sched, err := s.startRefresh(ctx)
	if err != nil {
		return err
	}
	if sched != nil {
		defer func() { <-sched.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		appLog.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

// startRefresh runs one feed refresh right away and schedules the rest.
// It returns nil when there is nothing to refresh.
func (s *Server) startRefresh(ctx context.Context) (*cron.Cron, error) {
	if s.fetcher == nil || !s.setup.HasFeeds() {
		return nil, nil
	}

	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := s.setup.RefreshFeeds(rctx, s.fetcher); err != nil {
			appLog.Error("feed refresh failed", err)
			return
		}
		appLog.Info("feed refresh done", "days", s.setup.FeedDays.Len())
	}

	c := cron.New(cron.WithLocation(s.setup.Location))
	if _, err := c.AddFunc(s.cfg.Highlight.Refresh, refresh); err != nil {
		return nil, fmt.Errorf("web: refresh schedule %q: %w", s.cfg.Highlight.Refresh, err)
	}
	go refresh()
	c.Start()
	appLog.Info("feed refresh scheduled", "spec", s.cfg.Highlight.Refresh)
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
