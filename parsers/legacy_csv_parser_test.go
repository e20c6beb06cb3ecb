package parsers

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestParseLegacyCSV_OldHeader(t *testing.T) {
	content := "\xEF\xBB\xBFyear,month,day,heat_number,compound_layer,diffusion_depth,preid,identification\n" +
		"2025,1,21,12,0.010,0.30,24,7698\n" +
		",,,,,,,\n" +
		"2025,1,21,12,0.010,,24,7699\n"

	drafts, err := ParseLegacyCSV(SkipBOM(strings.NewReader(content)), "24database.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	first := drafts[0]
	require.NotNil(t, first.Date)
	assert.Equal(t, 2025, first.Date.Year)
	assert.Equal(t, 12, *first.HeatNumber)
	assert.Equal(t, "0.010", *first.CompoundLayer)
	assert.Equal(t, "0.30", *first.DiffusionDepth)
	assert.Equal(t, 24, *first.PartitionYear)
	assert.Equal(t, 7698, *first.Serial)
	assert.Equal(t, "24database.csv:2", first.Source)

	assert.Nil(t, drafts[1].DiffusionDepth)
}

func TestParseLegacyCSV_MissingHeader(t *testing.T) {
	_, err := ParseLegacyCSV(strings.NewReader("year,month\n1,2\n"), "x.csv")
	assert.Error(t, err)

	_, err = ParseLegacyCSV(strings.NewReader(""), "x.csv")
	assert.Error(t, err)
}

func TestDecodeReader_GB18030(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("缸套"))
	require.NoError(t, err)

	r, err := DecodeReader(bytes.NewReader(encoded), "GB18030")
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "缸套", string(out))

	_, err = DecodeReader(bytes.NewReader(nil), "latin9")
	assert.Error(t, err)
}
