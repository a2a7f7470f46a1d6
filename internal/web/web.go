// Package web exposes the computed month grid over HTTP: a JSON API for
// embedding hosts and a server-rendered month view the capture pipeline
// screenshots.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"lanecal/internal/config"
	"lanecal/internal/grid"
	applog "lanecal/internal/log"
	"lanecal/internal/model"
)

// Server serves the grid API. Activities are pushed in by the refresh
// loop via SetActivities; requests only ever read a consistent snapshot.
type Server struct {
	router *mux.Router

	// configPath, when non-empty, is where config updates are persisted.
	configPath string

	cfgMu sync.RWMutex
	cfg   *config.Config

	mu         sync.RWMutex
	activities []model.Activity
	refreshed  time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewServer builds a Server for the given configuration. configPath may
// be empty, in which case config updates stay in memory only.
func NewServer(cfg *config.Config, configPath string) *Server {
	s := &Server{
		cfg:        cfg,
		configPath: configPath,
		router:     mux.NewRouter(),
		now:        time.Now,
	}
	s.routes()
	return s
}

// Handler returns the fully-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.basicAuth(s.router)
}

// Config returns the currently effective configuration. The pointed-to
// value is never mutated after publication; updates swap the pointer.
func (s *Server) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// SetActivities replaces the served activity snapshot.
func (s *Server) SetActivities(activities []model.Activity) {
	s.mu.Lock()
	s.activities = activities
	s.refreshed = s.now()
	s.mu.Unlock()
	applog.Info("web: activity snapshot replaced", "count", len(activities))
}

func (s *Server) snapshot() ([]model.Activity, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities, s.refreshed
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/grid/{year:[0-9]+}/{month:[0-9]+}", s.handleGrid).Methods(http.MethodGet)
	s.router.HandleFunc("/api/activities", s.handleActivities).Methods(http.MethodGet)
	s.router.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/api/config", s.handleConfigUpdate).Methods(http.MethodPut)
	s.router.HandleFunc("/calendar", s.handleCalendarPage).Methods(http.MethodGet)
}

// basicAuth protects every endpoint except /health. Credentials are read
// from the live config on every request so an update takes effect without
// a restart.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ba := s.Config().BasicAuth
		if ba == nil || ba.Username == "" || ba.Password == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, ba.Username) || !secureCompare(p, ba.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="lanecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// slotDTO is the JSON view of one lane slot. Empty placeholder lanes
// serialize as null.
type slotDTO struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Label         string `json:"label"`
	Color         string `json:"color"`
	IsVisualStart bool   `json:"is_visual_start"`
	IsVisualEnd   bool   `json:"is_visual_end"`
}

type cellDTO struct {
	Blank      bool       `json:"blank"`
	Day        int        `json:"day,omitempty"`
	Key        string     `json:"key,omitempty"`
	IsToday    bool       `json:"is_today,omitempty"`
	IsDisabled bool       `json:"is_disabled,omitempty"`
	Slots      []*slotDTO `json:"slots,omitempty"`
	Overflow   int        `json:"overflow,omitempty"`
}

type gridResponse struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	LaneCap     int       `json:"lane_cap"`
	Cells       []cellDTO `json:"cells"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// handleGrid builds and returns the month grid for /api/grid/{year}/{month}.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(mux.Vars(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "year or month out of range")
		return
	}

	cells, refreshed := s.buildCells(year, month)

	writeJSON(w, http.StatusOK, gridResponse{
		Year:        year,
		Month:       int(month),
		LaneCap:     s.Config().LaneCap,
		Cells:       cells,
		RefreshedAt: refreshed,
	})
}

func (s *Server) buildCells(year int, month time.Month) ([]cellDTO, time.Time) {
	activities, refreshed := s.snapshot()
	cfg := s.Config()

	lanes := grid.AssignLanes(activities, year, month, cfg.LaneCap)
	cells := grid.BuildGrid(year, month, lanes, grid.CellOptions{
		WeekendDisabled:  cfg.WeekendDisabledValue(),
		DisablePastDates: cfg.DisablePastDatesValue(),
		LaneCap:          cfg.LaneCap,
		Today:            s.now(),
		ColorFor: func(a model.Activity) string {
			return cfg.ColorFor(a.Category)
		},
	})

	dtos := make([]cellDTO, len(cells))
	for i, c := range cells {
		dto := cellDTO{
			Blank:      c.Blank,
			Day:        c.Day,
			Key:        c.Key,
			IsToday:    c.IsToday,
			IsDisabled: c.IsDisabled,
			Overflow:   c.Overflow,
		}
		for _, sv := range c.Slots {
			if sv.Activity == nil {
				dto.Slots = append(dto.Slots, nil)
				continue
			}
			dto.Slots = append(dto.Slots, &slotDTO{
				ID:            sv.Activity.ID,
				Title:         sv.Activity.Title,
				Category:      sv.Activity.Category,
				Label:         sv.Label,
				Color:         sv.Color,
				IsVisualStart: sv.IsVisualStart,
				IsVisualEnd:   sv.IsVisualEnd,
			})
		}
		dtos[i] = dto
	}
	return dtos, refreshed
}

type activityDTO struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (s *Server) handleActivities(w http.ResponseWriter, _ *http.Request) {
	activities, refreshed := s.snapshot()

	dtos := make([]activityDTO, 0, len(activities))
	for _, a := range activities {
		dtos = append(dtos, activityDTO{
			ID:       a.ID,
			Title:    a.Title,
			Category: a.Category,
			Start:    a.Start,
			End:      a.EndDay(),
		})
	}

	writeJSON(w, http.StatusOK, struct {
		Activities  []activityDTO `json:"activities"`
		RefreshedAt time.Time     `json:"refreshed_at"`
	}{dtos, refreshed})
}

// handleConfig returns the configuration with credentials stripped.
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	sanitized := *s.Config()
	sanitized.BasicAuth = nil
	writeJSON(w, http.StatusOK, sanitized)
}

// handleConfigUpdate replaces the configuration from the request body,
// persists it (when a config path is known) and swaps it live.
//
// The GET view strips credentials, so a round-tripped body carries no
// basic_auth block; an absent block therefore keeps the current
// credentials instead of dropping them.
func (s *Server) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "malformed config body")
		return
	}
	if incoming.BasicAuth == nil {
		incoming.BasicAuth = s.Config().BasicAuth
	}
	incoming.Normalize()

	if s.configPath != "" {
		if err := config.Save(s.configPath, &incoming); err != nil {
			applog.Error("web: config save failed", err, "path", s.configPath)
			writeError(w, http.StatusInternalServerError, "failed to persist config")
			return
		}
	}

	s.cfgMu.Lock()
	s.cfg = &incoming
	s.cfgMu.Unlock()
	applog.Info("web: config updated", "persisted", s.configPath != "")

	sanitized := incoming
	sanitized.BasicAuth = nil
	writeJSON(w, http.StatusOK, sanitized)
}

func parseYearMonth(vars map[string]string) (int, time.Month, bool) {
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(vars["month"])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return year, time.Month(m), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("web: write JSON failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{msg})
}
