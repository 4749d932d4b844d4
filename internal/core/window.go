package core

import "time"

// MonthWindow returns the 12 completed calendar months before ref as
// ascending "YYYY-MM" keys. The month containing ref is never included:
// a ref in March 2025 yields 2024-03 through 2025-02.
//
// Month arithmetic is done on the first day of the month so year
// rollovers and month lengths are handled by the time package, not by
// string math.
func MonthWindow(ref time.Time) []string {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)

	window := make([]string, 0, WindowMonths)
	for i := WindowMonths; i >= 1; i-- {
		window = append(window, FormatYearMonth(first.AddDate(0, -i, 0)))
	}
	return window
}
