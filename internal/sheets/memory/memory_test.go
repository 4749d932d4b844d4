package memory

import (
	"context"
	"testing"

	"vmreport/internal/core"
)

func TestExportReport(t *testing.T) {
	store := New()

	payload := core.ReportPayload{
		Window: []string{"2024-01", "2024-02"},
		Rows: []core.UserPivotRow{
			{Username: "alice", Months: []core.MonthEntry{
				{YearMonth: "2024-01", Count: 1},
				{YearMonth: "2024-02", Count: 0},
			}, Total: 1},
		},
	}

	ref, err := store.ExportReport(context.Background(), payload)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("ref: got %q, want mem:1", ref)
	}

	exports := store.Exports()
	if len(exports) != 1 {
		t.Fatalf("exports: got %d, want 1", len(exports))
	}
	if exports[0].Rows[0].Username != "alice" {
		t.Fatalf("stored payload mismatch: %+v", exports[0])
	}
}
