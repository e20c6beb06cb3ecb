package report

import (
	"fmt"
	"strings"

	"saltbath/model"
)

// LabelSeparator joins part labels inside one report row. The printed acceptance
// sheets use two spaces.
const LabelSeparator = "  "

// BuildRows emits one report row per group, in group order. An empty group is
// rejected with model.ErrEmptyRecords.
func BuildRows(groups [][]model.Record) ([]model.ReportRow, error) {
	rows := make([]model.ReportRow, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("group %d: %w", i, model.ErrEmptyRecords)
		}
		head := g[0]
		labels := make([]string, 0, len(g))
		for _, r := range g {
			labels = append(labels, r.Identifier().String())
		}
		rows = append(rows, model.ReportRow{
			Date:           head.Date,
			HeatNumber:     head.HeatLabel(),
			Count:          len(g),
			CompoundLayer:  head.CompoundLayer,
			DiffusionDepth: head.DiffusionDepth,
			Labels:         strings.Join(labels, LabelSeparator),
		})
	}
	return rows, nil
}
