package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"saltbath/model"
)

// PartitionColumns is the fixed column order of a partition table.
var PartitionColumns = []string{"year", "month", "day", "heat_number", "compound_layer", "diffusion_depth", "partition_year", "serial"}

// legacyHeaderAliases maps the header names of the first spreadsheet exports.
var legacyHeaderAliases = map[string]string{
	"preid":          "partition_year",
	"identification": "serial",
}

// ParseLegacyCSV reads a flat partition file ("24database.csv") into drafts. Cells
// that are empty or not integers where integers are expected are left nil, so the
// validation gate rejects the batch instead of this parser guessing.
func ParseLegacyCSV(r io.Reader, source string) ([]model.RecordDraft, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range header {
		if alias, ok := legacyHeaderAliases[strings.TrimSpace(h)]; ok {
			header[i] = alias
		}
	}

	colIndex, err := getColIndex(header, PartitionColumns)
	if err != nil {
		return nil, err
	}

	var drafts []model.RecordDraft
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}
		if isBlankRow(rec) {
			zap.S().Warnf("legacy CSV %s line %d is blank (skipped)", source, line)
			continue
		}

		d := model.RecordDraft{
			Source:         fmt.Sprintf("%s:%d", source, line),
			HeatNumber:     optInt(get("heat_number")),
			CompoundLayer:  optString(get("compound_layer")),
			DiffusionDepth: optString(get("diffusion_depth")),
			PartitionYear:  optInt(get("partition_year")),
			Serial:         optInt(get("serial")),
		}
		year, month, day := optInt(get("year")), optInt(get("month")), optInt(get("day"))
		if year != nil && month != nil && day != nil {
			d.Date = &model.Date{Year: *year, Month: *month, Day: *day}
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func isBlankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func optInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
