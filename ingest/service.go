package ingest

import (
	"context"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"saltbath/database"
	"saltbath/model"
)

// Service writes validated batches into the partitioned store.
type Service struct {
	db *sqlx.DB
}

// NewService returns a Service backed by db.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Ingest validates drafts as one batch and appends the records partition by partition.
// If validation fails nothing is written and the *model.ValidationError is returned.
func (s *Service) Ingest(ctx context.Context, drafts []model.RecordDraft, source string) (*model.IngestSummary, error) {
	batch, err := ValidateBatch(drafts, source)
	if err != nil {
		zap.S().Errorf("batch from %s rejected: %v", source, err)
		return nil, err
	}
	return s.Write(ctx, batch)
}

// Write appends an already validated batch in one transaction. Records that are
// already stored are skipped and reported in the summary.
func (s *Service) Write(ctx context.Context, batch model.Batch) (*model.IngestSummary, error) {
	summary := &model.IngestSummary{
		BatchID:     uuid.NewString(),
		Source:      batch.Source,
		Fingerprint: Fingerprint(batch.Records),
	}

	prev, err := database.FindIngestBatchByFingerprint(s.db, summary.Fingerprint)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		zap.S().Warnf("batch from %s has the same content as batch %s (%s, %s)", batch.Source, prev.BatchID, prev.Source, prev.CreatedAt)
	}

	byPartition := make(map[int][]model.Record)
	partitionSet := mapset.NewThreadUnsafeSet[int]()
	for _, r := range batch.Records {
		byPartition[r.PartitionYear] = append(byPartition[r.PartitionYear], r)
		partitionSet.Add(r.PartitionYear)
	}
	summary.Partitions = partitionSet.ToSlice()
	sort.Ints(summary.Partitions)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, partition := range summary.Partitions {
		for _, r := range byPartition[partition] {
			outcome, err := database.AppendRecordInTx(tx, r, partition)
			if err != nil {
				return nil, err
			}
			if outcome == model.AppendAlreadyPresent {
				zap.S().Warnf("%s already present in partition %02d", r.Identifier(), partition)
				summary.AlreadyPresent = append(summary.AlreadyPresent, r.Identifier())
				continue
			}
			summary.Inserted++
		}
	}

	err = database.InsertIngestBatchInTx(tx, database.IngestBatch{
		BatchID:     summary.BatchID,
		Source:      summary.Source,
		Fingerprint: summary.Fingerprint,
		Inserted:    summary.Inserted,
		Skipped:     len(summary.AlreadyPresent),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch %s: %w", summary.BatchID, err)
	}
	zap.S().Infof("batch %s from %s: %d inserted, %d already present, partitions %v",
		summary.BatchID, summary.Source, summary.Inserted, len(summary.AlreadyPresent), summary.Partitions)
	return summary, nil
}
