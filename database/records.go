package database

import (
	"database/sql"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jmoiron/sqlx"

	"saltbath/model"
)

// RecordColumns is the column list of a partition table in its fixed order.
const RecordColumns = "year, month, day, heat_number, compound_layer, diffusion_depth, partition_year, serial"

// RecordExists reports whether the partition already holds a row equal to r on all
// eight fields. Integers compare as integers and the measurements as exact text.
func RecordExists(q sqlx.Queryer, r model.Record, partition int) (bool, error) {
	exists, err := PartitionTableExists(q, partition)
	if err != nil || !exists {
		return false, err
	}
	table, _ := PartitionTableName(partition)
	query := fmt.Sprintf(`
		SELECT 1 FROM %s
		WHERE year = ? AND month = ? AND day = ? AND heat_number = ?
		  AND compound_layer = ? AND diffusion_depth = ?
		  AND partition_year = ? AND serial = ?
		LIMIT 1`, table)

	var found int
	err = sqlx.Get(q, &found, query,
		r.Year, r.Month, r.Day, r.HeatNumber,
		r.CompoundLayer, r.DiffusionDepth,
		r.PartitionYear, r.Serial)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("RecordExists (%s) failed: %w", r.Identifier(), err)
	}
	return true, nil
}

// AppendRecordInTx adds r to the partition unless an identical row is already there.
// The partition table is created on first use.
func AppendRecordInTx(tx *sqlx.Tx, r model.Record, partition int) (model.AppendOutcome, error) {
	if err := EnsurePartitionTableInTx(tx, partition); err != nil {
		return model.AppendUnknown, err
	}
	exists, err := RecordExists(tx, r, partition)
	if err != nil {
		return model.AppendUnknown, err
	}
	if exists {
		return model.AppendAlreadyPresent, nil
	}

	table, _ := PartitionTableName(partition)
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table, RecordColumns)
	_, err = tx.Exec(q,
		r.Year, r.Month, r.Day, r.HeatNumber,
		r.CompoundLayer, r.DiffusionDepth,
		r.PartitionYear, r.Serial)
	if err != nil {
		return model.AppendUnknown, fmt.Errorf("AppendRecordInTx (%s) failed: %w", r.Identifier(), err)
	}
	return model.AppendInserted, nil
}

// GetRecordByIdentifier returns the first stored row for id in insertion order.
func GetRecordByIdentifier(q sqlx.Queryer, id model.Identifier) (model.Record, error) {
	records, err := SearchRecords(q, id)
	if err != nil {
		return model.Record{}, err
	}
	if len(records) == 0 {
		return model.Record{}, &model.LookupMissError{Missing: []model.Identifier{id}}
	}
	return records[0], nil
}

// SearchRecords returns every stored row carrying the serial of id, in insertion order.
func SearchRecords(q sqlx.Queryer, id model.Identifier) ([]model.Record, error) {
	exists, err := PartitionTableExists(q, id.PartitionYear)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	table, _ := PartitionTableName(id.PartitionYear)
	var records []model.Record
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE serial = ? ORDER BY rowid`, RecordColumns, table)
	if err := sqlx.Select(q, &records, query, id.Serial); err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", id, err)
	}
	return records, nil
}

// GetPartitionRecords returns the whole partition table in insertion order.
func GetPartitionRecords(q sqlx.Queryer, partition int) ([]model.Record, error) {
	exists, err := PartitionTableExists(q, partition)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("partition %02d has no table", partition)
	}
	table, _ := PartitionTableName(partition)
	var records []model.Record
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, RecordColumns, table)
	if err := sqlx.Select(q, &records, query); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return records, nil
}

// FindDuplicateSerials lists serials stored on more than one row of the partition.
// Row numbers count the header as row 1, like the flat file the table replaces.
func FindDuplicateSerials(q sqlx.Queryer, partition int) ([]model.DuplicateSerial, error) {
	exists, err := PartitionTableExists(q, partition)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("partition %02d has no table", partition)
	}
	table, _ := PartitionTableName(partition)

	var serials []int
	query := fmt.Sprintf(`SELECT serial FROM %s ORDER BY rowid`, table)
	if err := sqlx.Select(q, &serials, query); err != nil {
		return nil, fmt.Errorf("failed to read serials of %s: %w", table, err)
	}

	rowsBySerial := make(map[int][]int64)
	duplicated := mapset.NewThreadUnsafeSet[int]()
	for i, s := range serials {
		line := int64(i + 2)
		if _, seen := rowsBySerial[s]; seen {
			duplicated.Add(s)
		}
		rowsBySerial[s] = append(rowsBySerial[s], line)
	}

	dupSerials := duplicated.ToSlice()
	sort.Ints(dupSerials)
	result := make([]model.DuplicateSerial, 0, len(dupSerials))
	for _, s := range dupSerials {
		result = append(result, model.DuplicateSerial{Serial: s, Rows: rowsBySerial[s]})
	}
	return result, nil
}
