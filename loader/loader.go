package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"saltbath/database"
	"saltbath/ingest"
	"saltbath/model"
	"saltbath/parsers"
)

// InitDatabase applies the schema and logs which partitions are already present.
func InitDatabase(db *sqlx.DB) error {
	zap.S().Info("Applying database schema...")
	if err := database.ApplySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	partitions, err := database.ListPartitions(db)
	if err != nil {
		return fmt.Errorf("failed to list partitions: %w", err)
	}
	zap.S().Infof("Schema applied successfully, %d partition table(s) present: %v", len(partitions), partitions)
	return nil
}

// ImportLegacyCSV reads a flat partition file written by the spreadsheet era tool
// and ingests it as one batch.
func ImportLegacyCSV(ctx context.Context, svc *ingest.Service, path, encoding string) (*model.IngestSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()

	return ImportLegacyStream(ctx, svc, f, filepath.Base(path), encoding)
}

// ImportLegacyStream is ImportLegacyCSV over an already open reader.
func ImportLegacyStream(ctx context.Context, svc *ingest.Service, r io.Reader, source, encoding string) (*model.IngestSummary, error) {
	decoded, err := parsers.DecodeReader(r, encoding)
	if err != nil {
		return nil, err
	}
	drafts, err := parsers.ParseLegacyCSV(decoded, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	zap.S().Infof("Read %d rows from %s", len(drafts), source)

	return svc.Ingest(ctx, drafts, source)
}

// ExportPartitionCSV writes one partition table as a flat CSV with the fixed
// 8-column header, in stored row order.
func ExportPartitionCSV(q sqlx.Queryer, partition int, w io.Writer) (int, error) {
	records, err := database.GetPartitionRecords(q, partition)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(parsers.PartitionColumns); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Month),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.HeatNumber),
			r.CompoundLayer,
			r.DiffusionDepth,
			strconv.Itoa(r.PartitionYear),
			strconv.Itoa(r.Serial),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(records), nil
}

// LegacyFileName is the file name the spreadsheet era tool used for a partition.
func LegacyFileName(partition int) string {
	return fmt.Sprintf("%02ddatabase.csv", partition)
}
