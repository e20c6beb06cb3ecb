package ingest

import (
	"fmt"
	"strings"

	"saltbath/exceldate"
	"saltbath/model"
	"saltbath/parsers"
)

// ValidateBatch turns drafts into a batch only if every one of them is complete and
// has a serial below 100000. A single bad draft rejects the whole batch.
func ValidateBatch(drafts []model.RecordDraft, source string) (model.Batch, error) {
	if len(drafts) == 0 {
		return model.Batch{}, &model.ValidationError{Problems: []model.DraftProblem{{Index: 0, Source: source, Reason: "batch is empty"}}}
	}

	records := make([]model.Record, 0, len(drafts))
	var problems []model.DraftProblem
	for i, d := range drafts {
		r, missing := complete(d)
		var reasons []string
		if len(missing) > 0 {
			reasons = append(reasons, "missing "+strings.Join(missing, ", "))
		} else {
			if !exceldate.Valid(r.Date) {
				reasons = append(reasons, fmt.Sprintf("invalid date %s", r.Date))
			}
			if r.Serial < 0 || r.Serial >= parsers.MaxSerial {
				reasons = append(reasons, fmt.Sprintf("serial %d outside 0-%d", r.Serial, parsers.MaxSerial-1))
			}
			if r.PartitionYear < 0 || r.PartitionYear >= parsers.PartitionYearThreshold {
				reasons = append(reasons, fmt.Sprintf("partition year %d outside 0-%d", r.PartitionYear, parsers.PartitionYearThreshold-1))
			}
			if r.HeatNumber < 0 {
				reasons = append(reasons, fmt.Sprintf("negative heat number %d", r.HeatNumber))
			}
		}
		if len(reasons) > 0 {
			problems = append(problems, model.DraftProblem{Index: i, Source: d.Source, Reason: strings.Join(reasons, "; ")})
			continue
		}
		records = append(records, r)
	}

	if len(problems) > 0 {
		return model.Batch{}, &model.ValidationError{Problems: problems}
	}
	return model.Batch{Source: source, Records: records}, nil
}

func complete(d model.RecordDraft) (model.Record, []string) {
	var r model.Record
	var missing []string
	if d.Date != nil {
		r.Date = *d.Date
	} else {
		missing = append(missing, "date")
	}
	if d.HeatNumber != nil {
		r.HeatNumber = *d.HeatNumber
	} else {
		missing = append(missing, "heat_number")
	}
	if d.CompoundLayer != nil {
		r.CompoundLayer = *d.CompoundLayer
	} else {
		missing = append(missing, "compound_layer")
	}
	if d.DiffusionDepth != nil {
		r.DiffusionDepth = *d.DiffusionDepth
	} else {
		missing = append(missing, "diffusion_depth")
	}
	if d.PartitionYear != nil {
		r.PartitionYear = *d.PartitionYear
	} else {
		missing = append(missing, "partition_year")
	}
	if d.Serial != nil {
		r.Serial = *d.Serial
	} else {
		missing = append(missing, "serial")
	}
	return r, missing
}
