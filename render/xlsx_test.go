package render

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"saltbath/model"
)

func sampleRows() []model.ReportRow {
	return []model.ReportRow{
		{Date: model.Date{Year: 2025, Month: 1, Day: 21}, HeatNumber: "007", Count: 2, CompoundLayer: "12", DiffusionDepth: "0.20", Labels: "DL25-00001  DL25-00002"},
		{Date: model.Date{Year: 2025, Month: 1, Day: 22}, HeatNumber: "008", Count: 1, CompoundLayer: "13", DiffusionDepth: "0.25", Labels: "DL25-00003"},
		{Date: model.Date{Year: 2025, Month: 1, Day: 22}, HeatNumber: "009", Count: 1, CompoundLayer: "14", DiffusionDepth: "0.30", Labels: "DL25-00004"},
	}
}

func TestReportFileName(t *testing.T) {
	name := ReportFileName(model.Date{Year: 2025, Month: 3, Day: 4}, "265缸套盐浴报告")
	assert.Equal(t, "2025_3_4_265缸套盐浴报告.xlsx", name)
}

func TestWriteReportXLSX_Plain(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReportXLSX(sampleRows(), out, ""))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	heat, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "007", heat)

	count, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	labels, err := f.GetCellValue(sheet, "I4")
	require.NoError(t, err)
	assert.Equal(t, "DL25-00004", labels)

	serial, err := f.GetCellValue(sheet, "A2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "45678", serial)

	styleID, err := f.GetCellStyle(sheet, "A2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, "yy/m/d", *style.CustomNumFmt)
}

func TestWriteReportXLSX_TemplateMovesFooter(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "model.xlsx")

	tmpl := excelize.NewFile()
	sheet := tmpl.GetSheetName(0)
	require.NoError(t, tmpl.SetCellStr(sheet, "A1", "Salt bath acceptance report"))
	require.NoError(t, tmpl.SetCellStr(sheet, "B7", "Inspector"))
	border, err := tmpl.NewStyle(&excelize.Style{Border: []excelize.Border{{Type: "left", Color: "000000", Style: 1}}})
	require.NoError(t, err)
	require.NoError(t, tmpl.SetCellStyle(sheet, "B6", "B6", border))
	require.NoError(t, tmpl.SaveAs(tmplPath))
	require.NoError(t, tmpl.Close())

	out := filepath.Join(dir, "report.xlsx")
	require.NoError(t, WriteReportXLSX(sampleRows(), out, tmplPath))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	title, _ := f.GetCellValue(sheet, "A1")
	assert.Equal(t, "Salt bath acceptance report", title)

	first, _ := f.GetCellValue(sheet, "B6")
	assert.Equal(t, "007", first)
	last, _ := f.GetCellValue(sheet, "B8")
	assert.Equal(t, "009", last)

	footer, _ := f.GetCellValue(sheet, "B9")
	assert.Equal(t, "Inspector", footer)

	src, err := f.GetCellStyle(sheet, "B6")
	require.NoError(t, err)
	copied, err := f.GetCellStyle(sheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, src, copied)

	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var spans []string
	for _, m := range merges {
		spans = append(spans, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"B9:C9", "E9:H9"}, spans)

	count, _ := f.GetCellValue(sheet, "C8")
	assert.Equal(t, "1", count)

	titleStyle, err := f.GetCellStyle(sheet, "A2")
	require.NoError(t, err)
	title2, err := f.GetStyle(titleStyle)
	require.NoError(t, err)
	require.NotNil(t, title2.Alignment)
	assert.Equal(t, "left", title2.Alignment.Horizontal)

	dateStyle, err := f.GetCellStyle(sheet, "I2")
	require.NoError(t, err)
	right, err := f.GetStyle(dateStyle)
	require.NoError(t, err)
	require.NotNil(t, right.Alignment)
	assert.Equal(t, "right", right.Alignment.Horizontal)
}

func TestWriteReportXLSX_NoRows(t *testing.T) {
	err := WriteReportXLSX(nil, filepath.Join(t.TempDir(), "x.xlsx"), "")
	assert.ErrorIs(t, err, model.ErrEmptyRecords)
}
