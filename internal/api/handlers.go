package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/rs/zerolog"
)

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status            string `json:"status"`
	StoreConnected    bool   `json:"store_connected"`
	CalendarConnected bool   `json:"calendar_connected"`
	CommitsConnected  bool   `json:"commits_connected"`
}

// CalendarAnalyzeResponse is the body of a calendar-only sync.
type CalendarAnalyzeResponse struct {
	Success            bool    `json:"success"`
	WeeklyMeetingHours float64 `json:"weeklyMeetingHours"`
	FragmentationScore int     `json:"fragmentationScore"`
	MeetingDebtHours   float64 `json:"meetingDebtHours"`
}

// CommitsAnalyzeResponse is the body of a commits-only sync.
type CommitsAnalyzeResponse struct {
	Success       bool `json:"success"`
	TotalCommits  int  `json:"totalCommits"`
	ReposAnalyzed int  `json:"reposAnalyzed"`
	PeakHour      int  `json:"peakHour"`
	PeakDay       int  `json:"peakDay"`
}

// Handlers serves the REST API on top of a core.Service.
type Handlers struct {
	svc *core.Service
	log zerolog.Logger
}

// NewHandlers creates the handlers backed by svc.
func NewHandlers(svc *core.Service, log zerolog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contract.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Unauthorized")
	case errors.Is(err, contract.ErrInvalidInput), errors.Is(err, contract.ErrNotConnected):
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
	case errors.Is(err, contract.ErrUpstreamFetch):
		h.log.Warn().Err(err).Msg("upstream fetch failed")
		WriteError(w, http.StatusBadGateway, ErrUpstream, err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "Internal server error")
	}
}

// Health reports store connectivity and which sync paths are configured.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.StoreStatus(r.Context())
	calendar, commits := h.svc.Connected()
	resp := HealthResponse{
		Status:            "healthy",
		StoreConnected:    err == nil && status.Connected,
		CalendarConnected: calendar,
		CommitsConnected:  commits,
	}
	code := http.StatusOK
	if err != nil {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// WeeklyReport returns the report of the authenticated user.
func (h *Handlers) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Report(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Sync refreshes the snapshot for the scope given in the query string.
func (h *Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	scope := schema.SyncScope(r.URL.Query().Get("scope"))
	snap, err := h.svc.Sync(r.Context(), scope)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// AnalyzeCalendar runs a calendar-only sync.
func (h *Handlers) AnalyzeCalendar(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Sync(r.Context(), schema.ScopeCalendar)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarAnalyzeResponse{
		Success:            true,
		WeeklyMeetingHours: snap.WeeklyMeetingHours,
		FragmentationScore: snap.FragmentationScore,
		MeetingDebtHours:   snap.MeetingDebtHours,
	})
}

// AnalyzeCommits runs a commits-only sync.
func (h *Handlers) AnalyzeCommits(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Sync(r.Context(), schema.ScopeCommits)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CommitsAnalyzeResponse{
		Success:       true,
		TotalCommits:  snap.TotalCommits,
		ReposAnalyzed: snap.RepositoriesAnalyzed,
		PeakHour:      snap.PeakHour,
		PeakDay:       snap.PeakDay,
	})
}

// GetSettings returns the stored or default settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := core.UserFrom(r.Context()); !ok {
		h.writeServiceError(w, contract.ErrUnauthenticated)
		return
	}

	var update schema.SettingsUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "Invalid request body")
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), update)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// DemoData returns the fixed showcase payload. It needs no identity.
func (h *Handlers) DemoData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.DemoData())
}
