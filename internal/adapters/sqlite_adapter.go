package adapters

import (
	"context"

	"vmreport/internal/core"
	"vmreport/internal/services"
	"vmreport/internal/storage"
)

// SQLiteAdapter combines the SQLite repository and the event service into
// a single backend: writes go through the service (store then publish),
// reads go straight to the repository.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.EventService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.EventService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// RecordEvent implements ports.EventRecorder
func (a *SQLiteAdapter) RecordEvent(ctx context.Context, e core.AuditEvent) (string, error) {
	return a.service.RecordEvent(ctx, e)
}

// CountsByUserMonth implements ports.CountReader
func (a *SQLiteAdapter) CountsByUserMonth(ctx context.Context, sinceYearMonth string) ([]core.UserMonthCount, error) {
	return a.storage.CountsByUserMonth(ctx, sinceYearMonth)
}

// ListRecentEvents implements ports.EventLister
func (a *SQLiteAdapter) ListRecentEvents(ctx context.Context, limit int) ([]core.AuditEvent, error) {
	return a.storage.ListRecentEvents(ctx, limit)
}
