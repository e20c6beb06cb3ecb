package aggregation

import (
	"sort"

	"saltbath/model"
)

// lessRecord is the report order: inspection date, then heat number, then serial.
func lessRecord(a, b model.Record) bool {
	if a.Date != b.Date {
		return a.Date.Before(b.Date)
	}
	if a.HeatNumber != b.HeatNumber {
		return a.HeatNumber < b.HeatNumber
	}
	return a.Serial < b.Serial
}

// SortRecords returns a sorted copy of records. Records equal on every sort key keep
// their input order.
func SortRecords(records []model.Record) []model.Record {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessRecord(sorted[i], sorted[j])
	})
	return sorted
}

// DivideGroups splits sorted records into runs of neighbours that share date, heat
// number, compound layer and diffusion depth. It expects SortRecords output; it
// does not cluster records that are not adjacent.
func DivideGroups(sorted []model.Record) ([][]model.Record, error) {
	if len(sorted) == 0 {
		return nil, model.ErrEmptyRecords
	}
	var groups [][]model.Record
	start := 0
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].SameBatch(sorted[i-1]) {
			groups = append(groups, sorted[start:i:i])
			start = i
		}
	}
	groups = append(groups, sorted[start:len(sorted):len(sorted)])
	return groups, nil
}

// BuildReportGroups sorts records and divides them into report groups.
func BuildReportGroups(records []model.Record) ([][]model.Record, error) {
	if len(records) == 0 {
		return nil, model.ErrEmptyRecords
	}
	return DivideGroups(SortRecords(records))
}
