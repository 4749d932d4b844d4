package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"vmreport/internal/core"
)

// WriteTable renders the pivot as a terminal table: one row per user,
// one column per window month, a trailing total column.
func WriteTable(w io.Writer, payload core.ReportPayload) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(payload.Window)+2)
	header = append(header, "User")
	for _, month := range payload.Window {
		header = append(header, month)
	}
	header = append(header, "Total")
	tbl.AppendHeader(header)

	var grandTotal int64
	for _, row := range payload.Rows {
		out := make(table.Row, 0, len(row.Months)+2)
		out = append(out, row.Username)
		for _, entry := range row.Months {
			out = append(out, entry.Count)
		}
		out = append(out, row.Total)
		tbl.AppendRow(out)
		grandTotal += row.Total
	}

	footer := make(table.Row, len(payload.Window)+2)
	footer[0] = fmt.Sprintf("%d users", len(payload.Rows))
	footer[len(footer)-1] = grandTotal
	tbl.AppendFooter(footer)

	tbl.Render()
}
