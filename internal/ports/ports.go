package ports

import (
	"context"

	"vmreport/internal/core"
)

// Ports for outbound adapters.
type (
	// EventRecorder persists a single audit event.
	EventRecorder interface {
		RecordEvent(ctx context.Context, e core.AuditEvent) (ref string, err error)
	}

	// CountReader supplies the raw aggregated rows the pivot consumes:
	// one row per observed (username, yearMonth) pair with the number of
	// instance-created events, restricted to months >= sinceYearMonth.
	CountReader interface {
		CountsByUserMonth(ctx context.Context, sinceYearMonth string) ([]core.UserMonthCount, error)
	}

	// EventLister returns the most recent audit events, newest first.
	EventLister interface {
		ListRecentEvents(ctx context.Context, limit int) ([]core.AuditEvent, error)
	}

	// ReportExporter ships a finished report payload to an external
	// destination (a spreadsheet, a file, ...).
	ReportExporter interface {
		ExportReport(ctx context.Context, payload core.ReportPayload) (ref string, err error)
	}
)
