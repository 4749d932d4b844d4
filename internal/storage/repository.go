package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vmreport/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordEvent implements ports.EventRecorder
func (r *SQLiteRepository) RecordEvent(ctx context.Context, e core.AuditEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate event: %w", err)
	}

	row, err := r.queries.CreateAuditEvent(ctx, CreateAuditEventParams{
		Username:   e.Username,
		EventType:  e.EventType,
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		return "", fmt.Errorf("create audit event: %w", err)
	}

	slog.InfoContext(ctx, "Audit event saved to SQLite",
		"id", row.ID,
		"username", row.Username,
		"event_type", row.EventType,
		"occurred_at", row.OccurredAt.Format(time.RFC3339))

	return strconv.FormatInt(row.ID, 10), nil
}

// CountsByUserMonth implements ports.CountReader. The aggregation itself
// runs in SQLite; months before sinceYearMonth never leave the database.
func (r *SQLiteRepository) CountsByUserMonth(ctx context.Context, sinceYearMonth string) ([]core.UserMonthCount, error) {
	since, err := core.ParseYearMonth(sinceYearMonth)
	if err != nil {
		return nil, fmt.Errorf("parse since month %q: %w", sinceYearMonth, err)
	}

	dbRows, err := r.queries.CountEventsByUserMonth(ctx, core.EventInstanceCreated, since)
	if err != nil {
		return nil, fmt.Errorf("count events by user and month: %w", err)
	}

	counts := make([]core.UserMonthCount, len(dbRows))
	for i, row := range dbRows {
		counts[i] = core.UserMonthCount{
			Username:  row.Username,
			YearMonth: row.YearMonth,
			Count:     row.Count,
		}
	}
	return counts, nil
}

// ListRecentEvents implements ports.EventLister
func (r *SQLiteRepository) ListRecentEvents(ctx context.Context, limit int) ([]core.AuditEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	dbRows, err := r.queries.ListRecentEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}

	events := make([]core.AuditEvent, len(dbRows))
	for i, row := range dbRows {
		events[i] = core.AuditEvent{
			Username:   row.Username,
			EventType:  row.EventType,
			OccurredAt: row.OccurredAt,
		}
	}
	return events, nil
}

// EventCount returns the total number of stored audit events.
func (r *SQLiteRepository) EventCount(ctx context.Context) (int64, error) {
	n, err := r.queries.CountAllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
