package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const partitionTablePrefix = "partition_"

// MaxPartitionYear is the largest two digit partition key the store accepts.
const MaxPartitionYear = 49

// PartitionTableName returns the table holding one partition year, e.g. partition_24.
func PartitionTableName(partition int) (string, error) {
	if partition < 0 || partition > MaxPartitionYear {
		return "", fmt.Errorf("partition year %d out of range 0-%d", partition, MaxPartitionYear)
	}
	return fmt.Sprintf("%s%02d", partitionTablePrefix, partition), nil
}

// PartitionTableExists reports whether the partition has ever received a record.
func PartitionTableExists(q sqlx.Queryer, partition int) (bool, error) {
	table, err := PartitionTableName(partition)
	if err != nil {
		return false, err
	}
	var exists int
	err = sqlx.Get(q, &exists, `SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`, table)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}

// EnsurePartitionTableInTx creates the partition table with its fixed 8 columns.
func EnsurePartitionTableInTx(tx *sqlx.Tx, partition int) error {
	exists, err := PartitionTableExists(tx, partition)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	table, _ := PartitionTableName(partition)
	q := fmt.Sprintf(`
		CREATE TABLE %s (
			year            INTEGER NOT NULL,
			month           INTEGER NOT NULL,
			day             INTEGER NOT NULL,
			heat_number     INTEGER NOT NULL,
			compound_layer  TEXT    NOT NULL,
			diffusion_depth TEXT    NOT NULL,
			partition_year  INTEGER NOT NULL,
			serial          INTEGER NOT NULL
		)`, table)
	if _, err := tx.Exec(q); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	idx := fmt.Sprintf(`CREATE INDEX idx_%s_serial ON %s (serial)`, table, table)
	if _, err := tx.Exec(idx); err != nil {
		return fmt.Errorf("failed to index table %s: %w", table, err)
	}
	zap.S().Infof("created partition table %s", table)
	return nil
}

// ListPartitions returns every partition year that has a table, ascending.
func ListPartitions(q sqlx.Queryer) ([]int, error) {
	var names []string
	err := sqlx.Select(q, &names, `SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'partition\_%' ESCAPE '\'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	var partitions []int
	for _, name := range names {
		n, err := strconv.Atoi(strings.TrimPrefix(name, partitionTablePrefix))
		if err != nil {
			zap.S().Warnf("ignoring table with unexpected name %s", name)
			continue
		}
		partitions = append(partitions, n)
	}
	sort.Ints(partitions)
	return partitions, nil
}
