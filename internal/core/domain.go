package core

import (
	"errors"
	"strings"
	"time"
)

// YearMonthLayout is the time layout for pivot axis keys ("YYYY-MM").
const YearMonthLayout = "2006-01"

// WindowMonths is the length of the trailing report window.
const WindowMonths = 12

// EventInstanceCreated is the audit event type this report counts.
const EventInstanceCreated = "instance.created"

type (
	// AuditEvent is a single audit record as delivered by the host.
	AuditEvent struct {
		Username   string
		EventType  string
		OccurredAt time.Time
	}

	// UserMonthCount is one raw aggregated row: how many events a user
	// produced in a given calendar month. Produced by the data source,
	// consumed by BuildPivot.
	UserMonthCount struct {
		Username  string
		YearMonth string
		Count     int64
	}

	// MonthEntry is one cell in a user's pivot row.
	MonthEntry struct {
		YearMonth string
		Count     int64
	}

	// UserPivotRow is a dense per-user row: one MonthEntry per window
	// month, in window order, plus the user's total.
	UserPivotRow struct {
		Username string
		Months   []MonthEntry
		Total    int64
	}

	// ReportPayload is the report artifact: rows sorted by total
	// descending plus the month axis they share.
	ReportPayload struct {
		Rows   []UserPivotRow
		Window []string
	}
)

var (
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyEventType   = errors.New("empty event type")
	ErrZeroOccurredAt   = errors.New("event time cannot be zero")
	ErrNegativeCount    = errors.New("negative count")
	ErrInvalidYearMonth = errors.New("invalid year-month")
)

// ParseYearMonth parses a "YYYY-MM" token into the first instant of that
// month in UTC.
func ParseYearMonth(s string) (time.Time, error) {
	t, err := time.Parse(YearMonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidYearMonth
	}
	return t, nil
}

// FormatYearMonth truncates t to its calendar month key.
func FormatYearMonth(t time.Time) string {
	return t.Format(YearMonthLayout)
}

func (e AuditEvent) Validate() error {
	if strings.TrimSpace(e.Username) == "" {
		return ErrEmptyUsername
	}
	if len(e.Username) > 200 {
		return errors.New("username too long (max 200 characters)")
	}
	if strings.TrimSpace(e.EventType) == "" {
		return ErrEmptyEventType
	}
	if e.OccurredAt.IsZero() {
		return ErrZeroOccurredAt
	}
	return nil
}

func (r UserMonthCount) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrEmptyUsername
	}
	if r.Count < 0 {
		return ErrNegativeCount
	}
	if _, err := ParseYearMonth(r.YearMonth); err != nil {
		return err
	}
	return nil
}
