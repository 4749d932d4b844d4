package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vmreport/internal/core"
)

// MemoryStore is an in-memory event store for tests and local development.
// It mirrors the SQLite repository's aggregation semantics.
type MemoryStore struct {
	mu     sync.Mutex
	events []core.AuditEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordEvent implements ports.EventRecorder
func (s *MemoryStore) RecordEvent(_ context.Context, e core.AuditEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return fmt.Sprintf("mem:%d", len(s.events)), nil
}

// CountsByUserMonth implements ports.CountReader
func (s *MemoryStore) CountsByUserMonth(_ context.Context, sinceYearMonth string) ([]core.UserMonthCount, error) {
	since, err := core.ParseYearMonth(sinceYearMonth)
	if err != nil {
		return nil, fmt.Errorf("parse since month %q: %w", sinceYearMonth, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[[2]string]int64)
	for _, e := range s.events {
		if e.EventType != core.EventInstanceCreated || e.OccurredAt.Before(since) {
			continue
		}
		key := [2]string{e.Username, core.FormatYearMonth(e.OccurredAt.UTC())}
		counts[key]++
	}

	out := make([]core.UserMonthCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, core.UserMonthCount{
			Username:  key[0],
			YearMonth: key[1],
			Count:     n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].YearMonth < out[j].YearMonth
	})
	return out, nil
}

// ListRecentEvents implements ports.EventLister
func (s *MemoryStore) ListRecentEvents(_ context.Context, limit int) ([]core.AuditEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]core.AuditEvent(nil), s.events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}
