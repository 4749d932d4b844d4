package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"vmreport/internal/core"
	"vmreport/internal/render"
)

type eventView struct {
	Username   string `json:"username"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
}

type monthEntryView struct {
	YearMonth string `json:"year_month"`
	Count     int64  `json:"count"`
}

type pivotRowView struct {
	Username string           `json:"username"`
	Months   []monthEntryView `json:"months"`
	Total    int64            `json:"total"`
}

type reportView struct {
	Window []string       `json:"window"`
	Rows   []pivotRowView `json:"rows"`
}

func toReportView(payload core.ReportPayload) reportView {
	view := reportView{
		Window: payload.Window,
		Rows:   make([]pivotRowView, len(payload.Rows)),
	}
	for i, row := range payload.Rows {
		months := make([]monthEntryView, len(row.Months))
		for j, entry := range row.Months {
			months[j] = monthEntryView{YearMonth: entry.YearMonth, Count: entry.Count}
		}
		view.Rows[i] = pivotRowView{Username: row.Username, Months: months, Total: row.Total}
	}
	return view
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	payload, err := s.reports.BuildReport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}

	events, err := s.backend.ListRecentEvents(r.Context(), 10)
	if err != nil {
		// The dashboard still renders without the recent-events panel.
		slog.ErrorContext(r.Context(), "Recent events lookup failed", "error", err)
	}

	recent := make([]eventView, len(events))
	for i, e := range events {
		recent[i] = eventView{
			Username:   e.Username,
			EventType:  e.EventType,
			OccurredAt: e.OccurredAt.UTC().Format("2006-01-02 15:04"),
		}
	}

	data := struct {
		WindowStart  string
		WindowEnd    string
		Report       core.ReportPayload
		RecentEvents []eventView
		GeneratedAt  string
	}{
		WindowStart:  payload.Window[0],
		WindowEnd:    payload.Window[len(payload.Window)-1],
		Report:       payload,
		RecentEvents: recent,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleReportTable(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	payload, err := s.reports.BuildReport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}

	if err := s.templates.ExecuteTemplate(w, "report_table.html", payload); err != nil {
		slog.ErrorContext(r.Context(), "Report table template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	payload, err := s.reports.BuildReport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err)
		http.Error(w, `{"error":"report unavailable"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toReportView(payload)); err != nil {
		slog.ErrorContext(r.Context(), "Report JSON encoding failed", "error", err)
	}
}

func (s *Server) handleReportChart(w http.ResponseWriter, r *http.Request) {
	payload, err := s.reports.BuildReport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteChart(w, payload); err != nil {
		slog.ErrorContext(r.Context(), "Chart render failed", "error", err)
	}
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	event, err := eventFromValues(
		sanitizeInput(r.FormValue("username")),
		sanitizeInput(r.FormValue("event_type")),
		sanitizeInput(r.FormValue("occurred_at")),
	)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">` + err.Error() + `</div>`))
		return
	}

	ref, err := s.backend.RecordEvent(r.Context(), event)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record event failed", "error", err, "username", event.Username)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not record event</div>`))
		return
	}

	_, _ = w.Write([]byte(`<div class="success">Event recorded (` + ref + `)</div>`))
}

type createEventRequest struct {
	Username   string `json:"username"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
}

func (s *Server) handleCreateEventJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	event, err := eventFromValues(
		sanitizeInput(req.Username),
		sanitizeInput(req.EventType),
		sanitizeInput(req.OccurredAt),
	)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	ref, err := s.backend.RecordEvent(r.Context(), event)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record event failed", "error", err, "username", event.Username)
		http.Error(w, `{"error":"could not record event"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"ref": ref})
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 200)

	events, err := s.backend.ListRecentEvents(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent events lookup failed", "error", err)
		http.Error(w, `{"error":"events unavailable"}`, http.StatusInternalServerError)
		return
	}

	views := make([]eventView, len(events))
	for i, e := range events {
		views[i] = eventView{
			Username:   e.Username,
			EventType:  e.EventType,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		slog.ErrorContext(r.Context(), "Events JSON encoding failed", "error", err)
	}
}
