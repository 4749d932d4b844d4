package core

import "sort"

// BuildPivot turns sparse, arbitrarily ordered raw rows into a dense
// pivot over the given month window. Every user seen in rows gets one
// MonthEntry per window month (zero where the source had no row), and
// the result is sorted by total descending; equal totals keep the order
// in which the users were first encountered.
//
// Rows that fail validation are skipped. Rows whose month lies outside
// the window are expected (they fall off the reporting horizon) and
// contribute nothing.
//
// Duplicate (username, yearMonth) pairs keep the historical contract:
// the cell shows the last value written while the total accumulates
// every matching row. See the duplicate tests before changing this.
func BuildPivot(rows []UserMonthCount, window []string) ReportPayload {
	monthIdx := make(map[string]int, len(window))
	for i, ym := range window {
		monthIdx[ym] = i
	}

	byUser := make(map[string]*UserPivotRow, len(rows))
	order := make([]*UserPivotRow, 0, len(rows))

	for _, raw := range rows {
		if err := raw.Validate(); err != nil {
			continue
		}

		row, seen := byUser[raw.Username]
		if !seen {
			row = &UserPivotRow{
				Username: raw.Username,
				Months:   make([]MonthEntry, len(window)),
			}
			for i, ym := range window {
				row.Months[i] = MonthEntry{YearMonth: ym}
			}
			byUser[raw.Username] = row
			order = append(order, row)
		}

		i, inWindow := monthIdx[raw.YearMonth]
		if !inWindow {
			continue
		}

		row.Months[i].Count = raw.Count
		row.Total += raw.Count
	}

	out := make([]UserPivotRow, len(order))
	for i, row := range order {
		out[i] = *row
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})

	return ReportPayload{
		Rows:   out,
		Window: append([]string(nil), window...),
	}
}
