package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vmreport/internal/cache"
	"vmreport/internal/core"
	"vmreport/internal/ports"
)

// ReportService builds the per-user monthly pivot over the trailing
// twelve-month window. Built reports are cached keyed by the reference
// month, so the cache naturally rolls over at month boundaries.
type ReportService struct {
	counts ports.CountReader
	cache  *cache.LRUCache[core.ReportPayload]
	now    func() time.Time
}

type ReportServiceOption func(*ReportService)

// WithClock overrides the reference clock. The window always excludes
// the month the clock currently points into.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		s.now = now
	}
}

func NewReportService(counts ports.CountReader, reportCache *cache.LRUCache[core.ReportPayload], opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		counts: counts,
		cache:  reportCache,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildReport returns the dense pivot for the current trailing window.
func (s *ReportService) BuildReport(ctx context.Context) (core.ReportPayload, error) {
	now := s.now()
	window := core.MonthWindow(now)
	cacheKey := "report:" + core.FormatYearMonth(now)

	if s.cache != nil {
		if payload, ok := s.cache.Get(cacheKey); ok {
			slog.DebugContext(ctx, "Report served from cache",
				"window_start", window[0], "window_end", window[len(window)-1])
			return payload, nil
		}
	}

	rows, err := s.counts.CountsByUserMonth(ctx, window[0])
	if err != nil {
		return core.ReportPayload{}, fmt.Errorf("load user-month counts: %w", err)
	}

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed count row",
				"username", row.Username,
				"year_month", row.YearMonth,
				"count", row.Count,
				"error", err)
		}
	}

	payload := core.BuildPivot(rows, window)

	slog.InfoContext(ctx, "Report built",
		"window_start", window[0],
		"window_end", window[len(window)-1],
		"source_rows", len(rows),
		"row_count", len(payload.Rows))

	if s.cache != nil {
		s.cache.Set(cacheKey, payload)
	}
	return payload, nil
}

// InvalidateCache drops the cached report for the current reference month.
func (s *ReportService) InvalidateCache() {
	if s.cache != nil {
		s.cache.Delete("report:" + core.FormatYearMonth(s.now()))
	}
}
