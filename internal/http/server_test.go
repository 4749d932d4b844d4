package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vmreport/internal/core"
	"vmreport/internal/services"
	"vmreport/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	reports := services.NewReportService(store, nil)
	srv := NewServer(":0", store, reports)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv, store
}

func seedEvent(t *testing.T, store *storage.MemoryStore, username string, occurredAt time.Time) {
	t.Helper()
	_, err := store.RecordEvent(context.Background(), core.AuditEvent{
		Username:   username,
		EventType:  core.EventInstanceCreated,
		OccurredAt: occurredAt,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func lastMonth() time.Time {
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Add(12 * time.Hour)
}

func TestIndexAndHealth(t *testing.T) {
	srv, store := newTestServer(t)
	seedEvent(t, store, "alice", lastMonth())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Instances created per user") {
		t.Fatalf("index body missing heading")
	}
	if !strings.Contains(rr.Body.String(), "alice") {
		t.Fatalf("index body missing seeded user")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestReportTablePartial(t *testing.T) {
	srv, store := newTestServer(t)
	seedEvent(t, store, "bob", lastMonth())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/report-table", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<table") || !strings.Contains(body, "bob") {
		t.Fatalf("partial missing table or user: %s", body)
	}
}

func TestReportJSON(t *testing.T) {
	srv, store := newTestServer(t)
	seedEvent(t, store, "alice", lastMonth())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}

	var view reportView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Window) != core.WindowMonths {
		t.Fatalf("window length: got %d", len(view.Window))
	}
	if len(view.Rows) != 1 || view.Rows[0].Username != "alice" || view.Rows[0].Total != 1 {
		t.Fatalf("unexpected rows: %+v", view.Rows)
	}
	if len(view.Rows[0].Months) != core.WindowMonths {
		t.Fatalf("row not dense: %d months", len(view.Rows[0].Months))
	}
}

func TestReportChart(t *testing.T) {
	srv, store := newTestServer(t)
	seedEvent(t, store, "alice", lastMonth())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/report/chart", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "echarts") {
		t.Fatal("chart body missing echarts runtime reference")
	}
}

func TestCreateEventValidationAndSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	// Wrong method
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Missing username
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("username=&occurred_at=2024-05-01"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Bad timestamp
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("username=alice&occurred_at=yesterday"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Success
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("username=alice&occurred_at=2024-05-01"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "success") {
		t.Fatalf("expected success in body: %s", rr.Body.String())
	}
}

func TestCreateEventJSON(t *testing.T) {
	srv, store := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"username":"carol","occurred_at":"2024-05-01T08:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["ref"] == "" {
		t.Fatal("expected a reference in response")
	}

	events, err := store.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Username != "carol" {
		t.Fatalf("event not stored: %+v", events)
	}
}

func TestRecentEventsJSON(t *testing.T) {
	srv, store := newTestServer(t)
	seedEvent(t, store, "alice", lastMonth())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events/recent?limit=5", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}

	var views []eventView
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Username != "alice" {
		t.Fatalf("unexpected events: %+v", views)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options: got %q", got)
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("missing Content-Security-Policy header")
	}
}
