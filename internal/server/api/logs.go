package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/store"
)

// LogsHandler serves the per-day aggregation endpoints
// /api/logs/water/{date} and /api/logs/study/{date}.
type LogsHandler struct {
	store *store.Store
}

// NewLogsHandler creates a LogsHandler.
func NewLogsHandler(s *store.Store) *LogsHandler {
	return &LogsHandler{store: s}
}

type waterLogResponse struct {
	Date       string                    `json:"date"`
	Events     []*behavior.DrinkingEvent `json:"events"`
	Count      int                       `json:"count"`
	TotalCount int                       `json:"total_count"`
}

type studySession struct {
	*behavior.StudyEvent
	Minutes int `json:"minutes"`
}

type studyLogResponse struct {
	Date         string         `json:"date"`
	Sessions     []studySession `json:"sessions"`
	Count        int            `json:"count"`
	Minutes      map[string]int `json:"minutes"`
	TotalMinutes int            `json:"total_minutes"`
}

// studyObjects are always present in the per-object minutes map.
var studyObjects = []string{"book", "laptop", "keyboard"}

// SessionMinutes is the whole minutes a session counts for; every stored
// session counts at least one.
func SessionMinutes(e *behavior.StudyEvent) int {
	m := int(e.DurationSec / 60)
	if m < 1 {
		return 1
	}
	return m
}

func sessionObject(e *behavior.StudyEvent) string {
	if e.Detail != "" {
		return strings.ToLower(e.Detail)
	}
	return strings.ToLower(e.Object)
}

// ServeHTTP routes by log kind.
func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/logs/")
	kind, date, ok := strings.Cut(rest, "/")
	if !ok || date == "" || strings.Contains(date, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if _, err := time.Parse(store.DayLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	switch kind {
	case "water":
		h.water(w, date)
	case "study":
		h.study(w, date)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *LogsHandler) water(w http.ResponseWriter, date string) {
	events, err := h.store.Drinks().ListByDay(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drinking events")
		return
	}
	total, err := h.store.Drinks().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count drinking events")
		return
	}
	if events == nil {
		events = []*behavior.DrinkingEvent{}
	}
	writeJSON(w, http.StatusOK, waterLogResponse{
		Date:       date,
		Events:     events,
		Count:      len(events),
		TotalCount: total,
	})
}

func (h *LogsHandler) study(w http.ResponseWriter, date string) {
	events, err := h.store.Studies().ListByDay(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list study sessions")
		return
	}

	resp := studyLogResponse{
		Date:     date,
		Sessions: make([]studySession, 0, len(events)),
		Count:    len(events),
		Minutes:  make(map[string]int, len(studyObjects)),
	}
	for _, obj := range studyObjects {
		resp.Minutes[obj] = 0
	}
	for _, e := range events {
		m := SessionMinutes(e)
		resp.Sessions = append(resp.Sessions, studySession{StudyEvent: e, Minutes: m})
		resp.Minutes[sessionObject(e)] += m
		resp.TotalMinutes += m
	}
	writeJSON(w, http.StatusOK, resp)
}
