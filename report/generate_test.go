package report

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saltbath/database"
	"saltbath/ingest"
	"saltbath/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *sqlx.DB, records ...model.Record) {
	t.Helper()
	_, err := ingest.NewService(db).Write(context.Background(), model.Batch{Source: "seed", Records: records})
	require.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	db := newTestDB(t)
	day1 := model.Date{Year: 2025, Month: 1, Day: 20}
	day2 := model.Date{Year: 2025, Month: 1, Day: 21}
	seed(t, db,
		model.Record{Date: day2, HeatNumber: 3, CompoundLayer: "0.01", DiffusionDepth: "0.3", PartitionYear: 24, Serial: 7698},
		model.Record{Date: day1, HeatNumber: 9, CompoundLayer: "0.02", DiffusionDepth: "0.4", PartitionYear: 24, Serial: 13456},
		model.Record{Date: day2, HeatNumber: 3, CompoundLayer: "0.01", DiffusionDepth: "0.3", PartitionYear: 25, Serial: 1977},
	)

	rep, err := Generate(db, []model.Identifier{
		{PartitionYear: 24, Serial: 7698},
		{PartitionYear: 24, Serial: 13456},
		{PartitionYear: 25, Serial: 1977},
	})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, day1, rep.Rows[0].Date)
	assert.Equal(t, "DL24-13456", rep.Rows[0].Labels)
	assert.Equal(t, "003", rep.Rows[1].HeatNumber)
	assert.Equal(t, 2, rep.Rows[1].Count)
	assert.Equal(t, "DL25-01977  DL24-07698", rep.Rows[1].Labels)
}

func TestGenerate_AllMissesReported(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, model.Record{Date: model.Date{Year: 2025, Month: 1, Day: 1}, HeatNumber: 1, CompoundLayer: "a", DiffusionDepth: "b", PartitionYear: 24, Serial: 100})

	_, err := Generate(db, []model.Identifier{
		{PartitionYear: 24, Serial: 101},
		{PartitionYear: 24, Serial: 100},
		{PartitionYear: 23, Serial: 100},
	})
	var miss *model.LookupMissError
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, []model.Identifier{{PartitionYear: 24, Serial: 101}, {PartitionYear: 23, Serial: 100}}, miss.Missing)
}

func TestGenerate_NoIdentifiers(t *testing.T) {
	db := newTestDB(t)
	_, err := Generate(db, nil)
	assert.True(t, errors.Is(err, model.ErrEmptyRecords))
}
