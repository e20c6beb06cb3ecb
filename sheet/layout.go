package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"saltbath/exceldate"
	"saltbath/model"
	"saltbath/parsers"
)

// maxRows guards against a sheet whose stop column never runs empty.
const maxRows = 1048576

// Layout describes where a row's fields sit in a workbook.
type Layout struct {
	Name     string
	FirstRow int
	// Reading stops at the first row whose StopCol cell is empty.
	StopCol int
	// When FilterCol is set, rows whose FilterCol cell does not contain
	// FilterContains are skipped.
	FilterCol      int
	FilterContains string

	DateCol      int
	HeatCol      int
	CompoundCol  int
	DiffusionCol int
	IdentCol     int
	// AcceptDotted allows hand written YY.M.D dates next to day serials.
	AcceptDotted bool
}

// ArchiveLayout is the summary sheet of past salt-bath reports.
func ArchiveLayout() Layout {
	return Layout{
		Name:         "archive",
		FirstRow:     5,
		StopCol:      1,
		DateCol:      1,
		HeatCol:      2,
		CompoundCol:  5,
		DiffusionCol: 6,
		IdentCol:     9,
		AcceptDotted: true,
	}
}

// EntryLayout is the laboratory's standard entry sheet. Only rows for the given
// product (e.g. "265") are taken.
func EntryLayout(product string) Layout {
	return Layout{
		Name:           "entry",
		FirstRow:       4,
		StopCol:        2,
		FilterCol:      3,
		FilterContains: product,
		DateCol:        2,
		HeatCol:        4,
		CompoundCol:    6,
		DiffusionCol:   7,
		IdentCol:       8,
	}
}

// ReadDrafts reads every data row of the sheet into drafts, one per identifier in
// the row. Missing or unreadable fields stay nil for the validation gate; an
// identifier cell that cannot be parsed aborts the read.
func ReadDrafts(r CellReader, sheet string, layout Layout, defaultPartition int) ([]model.RecordDraft, error) {
	var drafts []model.RecordDraft
	for row := layout.FirstRow; row < maxRows; row++ {
		get := func(col int) (string, error) {
			v, err := r.ReadCell(sheet, row, col)
			return strings.TrimSpace(v), err
		}

		stop, err := get(layout.StopCol)
		if err != nil {
			return nil, err
		}
		if stop == "" {
			break
		}
		if layout.FilterCol > 0 {
			v, err := get(layout.FilterCol)
			if err != nil {
				return nil, err
			}
			if !strings.Contains(v, layout.FilterContains) {
				continue
			}
		}

		source := fmt.Sprintf("%s!R%d", sheet, row)
		base := model.RecordDraft{Source: source}

		rawDate, err := get(layout.DateCol)
		if err != nil {
			return nil, err
		}
		if d, err := parseDate(rawDate, layout.AcceptDotted); err == nil {
			base.Date = &d
		} else {
			zap.S().Warnf("%s: date %q not readable: %v", source, rawDate, err)
		}

		rawHeat, err := get(layout.HeatCol)
		if err != nil {
			return nil, err
		}
		if n, err := strconv.Atoi(rawHeat); err == nil {
			base.HeatNumber = &n
		} else if rawHeat != "" {
			zap.S().Warnf("%s: heat number %q is not an integer", source, rawHeat)
		}

		if base.CompoundLayer, err = optCell(get(layout.CompoundCol)); err != nil {
			return nil, err
		}
		if base.DiffusionDepth, err = optCell(get(layout.DiffusionCol)); err != nil {
			return nil, err
		}

		rawIDs, err := get(layout.IdentCol)
		if err != nil {
			return nil, err
		}
		ids, err := parsers.ParseIdentifiers(rawIDs, defaultPartition)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		for _, id := range ids {
			d := base
			partition, serial := id.PartitionYear, id.Serial
			d.PartitionYear = &partition
			d.Serial = &serial
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

func parseDate(raw string, acceptDotted bool) (model.Date, error) {
	if !acceptDotted && strings.Count(raw, ".") > 1 {
		return model.Date{}, fmt.Errorf("dotted dates are not accepted in this layout")
	}
	return exceldate.ParseCell(raw)
}

func optCell(v string, err error) (*string, error) {
	if err != nil || v == "" {
		return nil, err
	}
	return &v, nil
}
