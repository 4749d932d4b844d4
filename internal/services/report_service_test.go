package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vmreport/internal/cache"
	"vmreport/internal/core"
)

type fakeCountReader struct {
	rows  []core.UserMonthCount
	err   error
	calls int
}

func (f *fakeCountReader) CountsByUserMonth(_ context.Context, sinceYearMonth string) ([]core.UserMonthCount, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestBuildReport(t *testing.T) {
	reader := &fakeCountReader{rows: []core.UserMonthCount{
		{Username: "alice", YearMonth: "2024-06", Count: 5},
		{Username: "bob", YearMonth: "2024-09", Count: 3},
	}}
	svc := NewReportService(reader, nil, WithClock(fixedClock(2024, time.October)))

	payload, err := svc.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	if len(payload.Window) != core.WindowMonths {
		t.Fatalf("window length: got %d, want %d", len(payload.Window), core.WindowMonths)
	}
	if payload.Window[0] != "2023-10" || payload.Window[11] != "2024-09" {
		t.Fatalf("window bounds: got %s..%s", payload.Window[0], payload.Window[11])
	}
	if len(payload.Rows) != 2 {
		t.Fatalf("row count: got %d, want 2", len(payload.Rows))
	}
	if payload.Rows[0].Username != "alice" || payload.Rows[0].Total != 5 {
		t.Fatalf("first row: got %s total %d", payload.Rows[0].Username, payload.Rows[0].Total)
	}
}

func TestBuildReportUsesCache(t *testing.T) {
	reader := &fakeCountReader{rows: []core.UserMonthCount{
		{Username: "alice", YearMonth: "2024-06", Count: 1},
	}}
	reportCache := cache.NewLRUCache[core.ReportPayload](4, time.Minute)
	svc := NewReportService(reader, reportCache, WithClock(fixedClock(2024, time.October)))

	if _, err := svc.BuildReport(context.Background()); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := svc.BuildReport(context.Background()); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("reader calls: got %d, want 1 (second build should hit the cache)", reader.calls)
	}

	svc.InvalidateCache()
	if _, err := svc.BuildReport(context.Background()); err != nil {
		t.Fatalf("third build: %v", err)
	}
	if reader.calls != 2 {
		t.Fatalf("reader calls after invalidation: got %d, want 2", reader.calls)
	}
}

func TestBuildReportPropagatesReaderError(t *testing.T) {
	reader := &fakeCountReader{err: errors.New("database locked")}
	svc := NewReportService(reader, nil, WithClock(fixedClock(2024, time.October)))

	if _, err := svc.BuildReport(context.Background()); err == nil {
		t.Fatal("expected error from failing count reader")
	}
}

func TestBuildReportSkipsMalformedRows(t *testing.T) {
	reader := &fakeCountReader{rows: []core.UserMonthCount{
		{Username: "", YearMonth: "2024-06", Count: 1},
		{Username: "carol", YearMonth: "2024-06", Count: 2},
	}}
	svc := NewReportService(reader, nil, WithClock(fixedClock(2024, time.October)))

	payload, err := svc.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(payload.Rows) != 1 || payload.Rows[0].Username != "carol" {
		t.Fatalf("expected only carol to survive, got %+v", payload.Rows)
	}
}
