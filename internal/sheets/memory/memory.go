package memory

import (
	"context"
	"fmt"
	"sync"

	"vmreport/internal/core"
	"vmreport/internal/ports"
)

// Store is an in-memory report exporter for tests and local development.
type Store struct {
	mu      sync.Mutex
	exports []core.ReportPayload
}

var _ ports.ReportExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ExportReport keeps the payload and returns a synthetic reference.
func (s *Store) ExportReport(_ context.Context, payload core.ReportPayload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, payload)
	return fmt.Sprintf("mem:%d", len(s.exports)), nil
}

// Exports returns a copy of everything exported so far.
func (s *Store) Exports() []core.ReportPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ReportPayload(nil), s.exports...)
}
