package render

import (
	"fmt"
	"html"
	"strings"

	"saltbath/model"
)

// RenderReportTableHTML builds the acceptance report table for the browser view.
func RenderReportTableHTML(rows []model.ReportRow) string {
	var sb strings.Builder

	sb.WriteString(`
    <thead>
        <tr>
            <th class="col-date">Date</th>
            <th class="col-heat">Heat No.</th>
            <th class="col-count">Qty</th>
            <th class="col-compound">Compound layer</th>
            <th class="col-diffusion">Diffusion depth</th>
            <th class="col-labels">Part numbers</th>
        </tr>
    </thead>`)

	sb.WriteString(`<tbody>`)
	if len(rows) == 0 {
		sb.WriteString(`<tr><td colspan="6">No records.</td></tr>`)
	} else {
		for _, row := range rows {
			formattedDate := fmt.Sprintf("%02d/%d/%d", row.Date.Year%100, row.Date.Month, row.Date.Day)
			sb.WriteString(`<tr>`)
			sb.WriteString(fmt.Sprintf(`<td class="center col-date">%s</td>`, formattedDate))
			sb.WriteString(fmt.Sprintf(`<td class="center col-heat">%s</td>`, html.EscapeString(row.HeatNumber)))
			sb.WriteString(fmt.Sprintf(`<td class="right col-count">%d</td>`, row.Count))
			sb.WriteString(fmt.Sprintf(`<td class="center col-compound">%s</td>`, html.EscapeString(row.CompoundLayer)))
			sb.WriteString(fmt.Sprintf(`<td class="center col-diffusion">%s</td>`, html.EscapeString(row.DiffusionDepth)))
			sb.WriteString(fmt.Sprintf(`<td class="col-labels">%s</td>`, html.EscapeString(row.Labels)))
			sb.WriteString(`</tr>`)
		}
	}
	sb.WriteString(`</tbody>`)

	return sb.String()
}

// RenderReportDocument wraps the table in a printable standalone page.
func RenderReportDocument(title string, reportDate model.Date, rows []model.ReportRow) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	sb.WriteString(fmt.Sprintf(`<title>%s</title>`, html.EscapeString(title)))
	sb.WriteString(`<style>
        body { font-family: sans-serif; font-size: 11pt; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #000; padding: 3px 6px; }
        .center { text-align: center; }
        .right { text-align: right; }
    </style></head><body>`)
	sb.WriteString(fmt.Sprintf(`<h1>%s</h1><p class="report-date">%d/%d/%d</p>`,
		html.EscapeString(title), reportDate.Year, reportDate.Month, reportDate.Day))
	sb.WriteString(`<table>`)
	sb.WriteString(RenderReportTableHTML(rows))
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}
