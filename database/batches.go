package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// IngestBatch is one row of the ingestion log.
type IngestBatch struct {
	BatchID     string `db:"batch_id" json:"batchId"`
	Source      string `db:"source" json:"source"`
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Inserted    int    `db:"inserted" json:"inserted"`
	Skipped     int    `db:"skipped" json:"skipped"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

// InsertIngestBatchInTx records a committed batch.
func InsertIngestBatchInTx(tx *sqlx.Tx, b IngestBatch) error {
	if b.CreatedAt == "" {
		b.CreatedAt = time.Now().Format(time.RFC3339)
	}
	const q = `
		INSERT INTO ingest_batches (batch_id, source, fingerprint, inserted, skipped, created_at)
		VALUES (:batch_id, :source, :fingerprint, :inserted, :skipped, :created_at)`
	if _, err := tx.NamedExec(q, b); err != nil {
		return fmt.Errorf("InsertIngestBatchInTx (%s) failed: %w", b.BatchID, err)
	}
	return nil
}

// FindIngestBatchByFingerprint returns the most recent batch with the same content,
// or nil when there is none.
func FindIngestBatchByFingerprint(q sqlx.Queryer, fingerprint string) (*IngestBatch, error) {
	var b IngestBatch
	err := sqlx.Get(q, &b, `
		SELECT batch_id, source, fingerprint, inserted, skipped, created_at
		FROM ingest_batches WHERE fingerprint = ?
		ORDER BY created_at DESC LIMIT 1`, fingerprint)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("FindIngestBatchByFingerprint failed: %w", err)
	}
	return &b, nil
}

// ListIngestBatches returns the ingestion log, newest first.
func ListIngestBatches(q sqlx.Queryer) ([]IngestBatch, error) {
	var batches []IngestBatch
	err := sqlx.Select(q, &batches, `
		SELECT batch_id, source, fingerprint, inserted, skipped, created_at
		FROM ingest_batches ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest batches: %w", err)
	}
	return batches, nil
}
