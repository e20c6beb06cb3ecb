package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"saltbath/model"
)

func TestRenderReportTableHTML(t *testing.T) {
	rows := []model.ReportRow{{
		Date:           model.Date{Year: 2025, Month: 1, Day: 21},
		HeatNumber:     "007",
		Count:          2,
		CompoundLayer:  "12<15",
		DiffusionDepth: "0.20",
		Labels:         "DL25-00001  DL25-00002",
	}}

	out := RenderReportTableHTML(rows)

	assert.Contains(t, out, "<td class=\"center col-date\">25/1/21</td>")
	assert.Contains(t, out, ">007<")
	assert.Contains(t, out, ">2<")
	assert.Contains(t, out, "12&lt;15")
	assert.Contains(t, out, "DL25-00001  DL25-00002")
	assert.Equal(t, 1, strings.Count(out, "<tr>")-1)
}

func TestRenderReportTableHTML_Empty(t *testing.T) {
	out := RenderReportTableHTML(nil)
	assert.Contains(t, out, "No records.")
}

func TestRenderReportDocument(t *testing.T) {
	doc := RenderReportDocument("265 report", model.Date{Year: 2025, Month: 3, Day: 4}, nil)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>265 report</title>")
	assert.Contains(t, doc, "2025/3/4")
	assert.Contains(t, doc, "<table>")
}
