package report

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"saltbath/aggregation"
	"saltbath/database"
	"saltbath/model"
)

// Report is the in-memory result of a report request. It is never persisted.
type Report struct {
	Groups [][]model.Record  `json:"-"`
	Rows   []model.ReportRow `json:"rows"`
}

// Generate looks up every identifier and builds the report. All identifiers must
// resolve; the misses are collected first and returned together.
func Generate(q sqlx.Queryer, ids []model.Identifier) (*Report, error) {
	if len(ids) == 0 {
		return nil, model.ErrEmptyRecords
	}

	records := make([]model.Record, 0, len(ids))
	var missing []model.Identifier
	for _, id := range ids {
		r, err := database.GetRecordByIdentifier(q, id)
		if err != nil {
			var miss *model.LookupMissError
			if errors.As(err, &miss) {
				zap.S().Warnf("partition %02d has no part with serial %05d", id.PartitionYear, id.Serial)
				missing = append(missing, id)
				continue
			}
			return nil, fmt.Errorf("lookup %s: %w", id, err)
		}
		records = append(records, r)
	}
	if len(missing) > 0 {
		return nil, &model.LookupMissError{Missing: missing}
	}

	groups, err := aggregation.BuildReportGroups(records)
	if err != nil {
		return nil, err
	}
	rows, err := BuildRows(groups)
	if err != nil {
		return nil, err
	}
	return &Report{Groups: groups, Rows: rows}, nil
}
