package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saltbath/model"
)

func TestBuildRows(t *testing.T) {
	date := model.Date{Year: 2025, Month: 1, Day: 21}
	groups := [][]model.Record{
		{
			{Date: date, HeatNumber: 7, CompoundLayer: "0.012", DiffusionDepth: "0.35", PartitionYear: 24, Serial: 7698},
			{Date: date, HeatNumber: 7, CompoundLayer: "0.012", DiffusionDepth: "0.35", PartitionYear: 25, Serial: 13456},
		},
		{
			{Date: date, HeatNumber: 123, CompoundLayer: "0.010", DiffusionDepth: "0.30", PartitionYear: 25, Serial: 50},
		},
	}

	rows, err := BuildRows(groups)
	require.NoError(t, err)
	require.Len(t, rows, len(groups))
	assert.Equal(t, []model.ReportRow{
		{Date: date, HeatNumber: "007", Count: 2, CompoundLayer: "0.012", DiffusionDepth: "0.35", Labels: "DL24-07698  DL25-13456"},
		{Date: date, HeatNumber: "123", Count: 1, CompoundLayer: "0.010", DiffusionDepth: "0.30", Labels: "DL25-00050"},
	}, rows)
}

func TestBuildRows_Empty(t *testing.T) {
	rows, err := BuildRows(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildRows_EmptyGroupIsAnError(t *testing.T) {
	date := model.Date{Year: 2025, Month: 1, Day: 21}
	groups := [][]model.Record{
		{{Date: date, HeatNumber: 7, CompoundLayer: "0.012", DiffusionDepth: "0.35", PartitionYear: 24, Serial: 7698}},
		{},
	}
	_, err := BuildRows(groups)
	assert.ErrorIs(t, err, model.ErrEmptyRecords)
}
