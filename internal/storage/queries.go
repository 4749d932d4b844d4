package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the prepared SQL for the audit-event store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// AuditEventRow mirrors one audit_events record.
type AuditEventRow struct {
	ID         int64
	Username   string
	EventType  string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// CreateAuditEventParams holds the insert values for one audit event.
type CreateAuditEventParams struct {
	Username   string
	EventType  string
	OccurredAt time.Time
}

const createAuditEvent = `
INSERT INTO audit_events (username, event_type, occurred_at)
VALUES (?, ?, ?)
RETURNING id, username, event_type, occurred_at, created_at
`

func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) (AuditEventRow, error) {
	row := q.db.QueryRowContext(ctx, createAuditEvent,
		arg.Username,
		arg.EventType,
		arg.OccurredAt.UTC().Format(time.RFC3339),
	)

	var (
		out        AuditEventRow
		occurredAt string
		createdAt  string
	)
	err := row.Scan(&out.ID, &out.Username, &out.EventType, &occurredAt, &createdAt)
	if err != nil {
		return AuditEventRow{}, err
	}
	out.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
	out.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return out, nil
}

// UserMonthCountRow is one aggregated (username, yearMonth, count) tuple.
type UserMonthCountRow struct {
	Username  string
	YearMonth string
	Count     int64
}

// Timestamps are stored as RFC3339 text in UTC, so strftime can bucket
// them into calendar months directly.
const countEventsByUserMonth = `
SELECT username, strftime('%Y-%m', occurred_at) AS year_month, COUNT(*) AS event_count
FROM audit_events
WHERE event_type = ? AND occurred_at >= ?
GROUP BY username, year_month
ORDER BY username, year_month
`

func (q *Queries) CountEventsByUserMonth(ctx context.Context, eventType string, since time.Time) ([]UserMonthCountRow, error) {
	rows, err := q.db.QueryContext(ctx, countEventsByUserMonth,
		eventType,
		since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserMonthCountRow
	for rows.Next() {
		var r UserMonthCountRow
		if err := rows.Scan(&r.Username, &r.YearMonth, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listRecentEvents = `
SELECT id, username, event_type, occurred_at, created_at
FROM audit_events
ORDER BY occurred_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]AuditEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEventRow
	for rows.Next() {
		var (
			r          AuditEventRow
			occurredAt string
			createdAt  string
		)
		if err := rows.Scan(&r.ID, &r.Username, &r.EventType, &occurredAt, &createdAt); err != nil {
			return nil, err
		}
		r.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

const countAllEvents = `SELECT COUNT(*) FROM audit_events`

func (q *Queries) CountAllEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAllEvents).Scan(&n)
	return n, err
}
