package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vmreport/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "vmreport.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(t *testing.T, repo *SQLiteRepository, username string, occurredAt time.Time) {
	t.Helper()
	_, err := repo.RecordEvent(context.Background(), core.AuditEvent{
		Username:   username,
		EventType:  core.EventInstanceCreated,
		OccurredAt: occurredAt,
	})
	if err != nil {
		t.Fatalf("record event for %s: %v", username, err)
	}
}

func TestRecordEventValidation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.RecordEvent(context.Background(), core.AuditEvent{
		Username:  "",
		EventType: core.EventInstanceCreated,
	})
	if err == nil {
		t.Fatal("expected validation error for empty username")
	}
}

func TestCountsByUserMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// alice: two events in 2024-01, one in 2024-03; bob: one in 2024-02.
	record(t, repo, "alice", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	record(t, repo, "alice", time.Date(2024, 1, 20, 18, 30, 0, 0, time.UTC))
	record(t, repo, "alice", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	record(t, repo, "bob", time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC))

	// An event of another type must not be counted.
	if _, err := repo.RecordEvent(ctx, core.AuditEvent{
		Username:   "alice",
		EventType:  "instance.deleted",
		OccurredAt: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("record other event: %v", err)
	}

	counts, err := repo.CountsByUserMonth(ctx, "2024-01")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}

	want := map[string]int64{
		"alice|2024-01": 2,
		"alice|2024-03": 1,
		"bob|2024-02":   1,
	}
	if len(counts) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(counts), len(want), counts)
	}
	for _, c := range counts {
		key := c.Username + "|" + c.YearMonth
		if want[key] != c.Count {
			t.Fatalf("row %s: count %d, want %d", key, c.Count, want[key])
		}
	}
}

func TestCountsByUserMonthSinceBoundary(t *testing.T) {
	repo := newTestRepo(t)

	record(t, repo, "alice", time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC))
	record(t, repo, "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	counts, err := repo.CountsByUserMonth(context.Background(), "2024-01")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("got %d rows, want 1 (December event is before the horizon)", len(counts))
	}
	if counts[0].YearMonth != "2024-01" || counts[0].Count != 1 {
		t.Fatalf("unexpected row %+v", counts[0])
	}
}

func TestCountsByUserMonthRejectsBadSince(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.CountsByUserMonth(context.Background(), "garbage"); err == nil {
		t.Fatal("expected error for invalid since month")
	}
}

func TestListRecentEvents(t *testing.T) {
	repo := newTestRepo(t)

	record(t, repo, "old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	record(t, repo, "mid", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	record(t, repo, "new", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	events, err := repo.ListRecentEvents(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Username != "new" || events[1].Username != "mid" {
		t.Fatalf("order: got %s, %s; want new, mid", events[0].Username, events[1].Username)
	}
}

func TestEventCount(t *testing.T) {
	repo := newTestRepo(t)

	record(t, repo, "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	record(t, repo, "bob", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	n, err := repo.EventCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}
